package vcard

import "strings"

// valueRule constrains how many values a property may carry.
type valueRule struct {
	once   bool // may appear at most once per card
	min    int
	max    int // -1 for unbounded
	reject Code
}

var propertyRules = map[string]valueRule{
	"KIND":         {once: true, min: 1, max: 1},
	"N":            {once: true, min: 5, max: 5},
	"GENDER":       {once: true, min: 1, max: 2},
	"PRODID":       {once: true, min: 1, max: 1},
	"REV":          {once: true, min: 1, max: 1},
	"UID":          {once: true, min: 1, max: 1},
	"ADR":          {min: 7, max: 7},
	"TEL":          {min: 1, max: 2},
	"ORG":          {min: 1, max: -1},
	"CLIENTPIDMAP": {min: 2, max: 2},
	"BEGIN":        {reject: InvalidCard},
	"END":          {reject: InvalidCard},
	"VERSION":      {reject: InvalidCard},
	"BDAY":         {reject: InvalidDateTime},
	"ANNIVERSARY":  {reject: InvalidDateTime},
}

// singleValueNames are the remaining general, identification, communication,
// geographical, organizational, explanatory, security and calendar
// properties. Each takes exactly one value. NICNNAME is accepted for files
// written by older tooling that used that spelling.
var singleValueNames = []string{
	"SOURCE", "XML", "NICKNAME", "NICNNAME", "PHOTO",
	"EMAIL", "IMPP", "LANG", "TZ", "GEO", "TITLE", "ROLE",
	"LOGO", "MEMBER", "RELATED", "CATEGORIES", "NOTE",
	"SOUND", "URL", "KEY", "FBURL", "CALADRURI", "CALURI",
}

func init() {
	for _, name := range singleValueNames {
		propertyRules[name] = valueRule{min: 1, max: 1}
	}
}

// Validate checks a built card against the vCard 4.0 structural and
// cardinality rules. It never modifies c. The first violation is returned.
func Validate(c *Card) error {
	if c == nil {
		return newError("validate", InvalidCard, "nil card")
	}
	if c.FN == nil {
		return newError("validate", InvalidCard, "missing FN")
	}
	if c.Optional == nil {
		return newError("validate", InvalidCard, "nil optional property list")
	}

	if !c.FN.HasName("FN") {
		return newError("validate", InvalidCard, "FN slot holds "+quote(c.FN.Name))
	}
	if err := checkContainers(c.FN); err != nil {
		return err
	}
	if len(c.FN.Values) != 1 {
		return newError("validate", InvalidProperty, "FN must have exactly one value")
	}

	if err := checkDateTime("BDAY", c.Birthday); err != nil {
		return err
	}
	if err := checkDateTime("ANNIVERSARY", c.Anniversary); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, p := range c.Optional {
		if p == nil {
			return newError("validate", InvalidProperty, "nil property")
		}
		if err := checkContainers(p); err != nil {
			return err
		}

		key := strings.ToUpper(p.Name)
		rule, ok := propertyRules[key]
		if !ok {
			return newError("validate", InvalidProperty, "unknown property "+quote(p.Name))
		}
		if rule.reject != OK {
			return newError("validate", rule.reject, quote(p.Name)+" is not allowed here")
		}
		if rule.once {
			if seen[key] {
				return newError("validate", InvalidProperty, quote(p.Name)+" appears more than once")
			}
			seen[key] = true
		}
		n := len(p.Values)
		if n < rule.min || (rule.max >= 0 && n > rule.max) {
			return newError("validate", InvalidProperty, quote(p.Name)+" has a wrong number of values")
		}
	}
	return nil
}

// checkContainers rejects a property whose slices were never initialized,
// which only happens for hand-built cards.
func checkContainers(p *Property) error {
	if p.Parameters == nil || p.Values == nil {
		return newError("validate", InvalidProperty, quote(p.Name)+" is not initialized")
	}
	return nil
}

func checkDateTime(name string, d *DateTime) error {
	if d == nil || !d.IsText {
		return nil
	}
	if d.Date != "" || d.Time != "" {
		return newError("validate", InvalidDateTime, name+" in text mode carries date or time")
	}
	return nil
}
