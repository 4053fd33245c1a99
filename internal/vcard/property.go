package vcard

import (
	"slices"
	"strings"
)

// Parameter is a NAME=VALUE modifier attached to a property.
type Parameter struct {
	Name  string
	Value string
}

func (p *Parameter) String() string {
	return p.Name + "=" + p.Value
}

// Equal compares name and value exactly.
func (p *Parameter) Equal(o *Parameter) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Name == o.Name && p.Value == o.Value
}

// Property is one content line of a card: optional group, name, parameters
// and one or more values, all kept in declaration order.
type Property struct {
	Group      string
	Name       string
	Parameters []*Parameter
	Values     []string
}

// NewProperty returns an ungrouped property with no parameters or values.
func NewProperty(name string) *Property {
	return &Property{
		Name:       name,
		Parameters: []*Parameter{},
		Values:     []string{},
	}
}

// HasName reports a case-insensitive name match.
func (p *Property) HasName(name string) bool {
	return strings.EqualFold(p.Name, name)
}

// addParams appends every KEY=VALUE segment of an unescaped ';' separated
// parameter block. A segment without '=' or with an empty value is rejected.
func (p *Property) addParams(block string) error {
	for _, seg := range splitUnescaped(block, ';') {
		name, value, ok := cutUnescaped(seg, '=')
		if !ok {
			return newError("parse", InvalidProperty, "parameter "+quote(seg)+" has no '='")
		}
		if value == "" {
			return newError("parse", InvalidProperty, "parameter "+quote(name)+" has an empty value")
		}
		p.Parameters = append(p.Parameters, &Parameter{Name: name, Value: value})
	}
	return nil
}

// addValues appends each unescaped ';' separated value, empty ones included.
func (p *Property) addValues(block opt) {
	if !block.ok {
		return
	}
	p.Values = append(p.Values, splitUnescaped(block.val, ';')...)
}

// apply copies the decomposed segments of a content line into p.
func (p *Property) apply(cl contentLine) error {
	if cl.group.ok {
		p.Group = cl.group.val
	}
	p.Name = cl.name
	if cl.params.ok {
		if err := p.addParams(cl.params.val); err != nil {
			return err
		}
	}
	p.addValues(cl.value)
	return nil
}

// Param returns the value of the first parameter named name (case-insensitive).
func (p *Property) Param(name string) (string, bool) {
	for _, prm := range p.Parameters {
		if strings.EqualFold(prm.Name, name) {
			return prm.Value, true
		}
	}
	return "", false
}

// Equal compares group, name, parameters and values. Names compare
// case-insensitively.
func (p *Property) Equal(o *Property) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Group == o.Group &&
		strings.EqualFold(p.Name, o.Name) &&
		slices.EqualFunc(p.Parameters, o.Parameters, (*Parameter).Equal) &&
		slices.Equal(p.Values, o.Values)
}

// Clone returns a deep copy.
func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	c := &Property{
		Group:      p.Group,
		Name:       p.Name,
		Parameters: make([]*Parameter, len(p.Parameters)),
		Values:     slices.Clone(p.Values),
	}
	if c.Values == nil {
		c.Values = []string{}
	}
	for i, prm := range p.Parameters {
		cp := *prm
		c.Parameters[i] = &cp
	}
	return c
}

// String renders the property for humans (not the wire format).
func (p *Property) String() string {
	var b strings.Builder
	b.WriteString("Property Name: ")
	b.WriteString(p.Name)
	b.WriteString("\nGroup Name: ")
	b.WriteString(p.Group)
	b.WriteString("\nParameters: ")
	for i, prm := range p.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(prm.String())
	}
	b.WriteString("\nValues: ")
	b.WriteString(strings.Join(p.Values, ", "))
	b.WriteByte('\n')
	return b.String()
}

func quote(s string) string {
	return "\"" + s + "\""
}
