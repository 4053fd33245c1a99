package vcard

import (
	"path/filepath"
	"strings"
)

// Summary is the one-line view of a card file used in file listings.
type Summary struct {
	File     string `json:"file"`
	Name     string `json:"name"`
	OpLength int    `json:"opLength,string"`
}

// PropertyRow is one row of the property listing of a card. FN is row 1.
type PropertyRow struct {
	Number int    `json:"number,string"`
	Name   string `json:"name"`
	Values string `json:"values"`
}

// SummaryOf builds the summary of c stored under file. OpLength counts the
// optional properties plus birthday and anniversary when present.
func SummaryOf(file string, c *Card) Summary {
	n := len(c.Optional)
	if c.Birthday != nil {
		n++
	}
	if c.Anniversary != nil {
		n++
	}
	return Summary{
		File:     filepath.Base(file),
		Name:     c.Name(),
		OpLength: n,
	}
}

// PropertiesOf lists FN followed by the optional properties, numbered from 1.
// Values are joined with ", ".
func PropertiesOf(c *Card) []PropertyRow {
	rows := make([]PropertyRow, 0, len(c.Optional)+1)
	if c.FN != nil {
		rows = append(rows, PropertyRow{
			Number: 1,
			Name:   "FN",
			Values: strings.Join(c.FN.Values, ", "),
		})
	}
	for _, p := range c.Optional {
		rows = append(rows, PropertyRow{
			Number: len(rows) + 1,
			Name:   p.Name,
			Values: strings.Join(p.Values, ", "),
		})
	}
	return rows
}

// LoadValid parses and validates the card at path.
func LoadValid(path string, opts ...ParseOption) (*Card, error) {
	c, err := ParseFile(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// loadReport is LoadValid for the reporting views. Failures keep their code
// but read "Could not create card" or "Not a valid card".
func loadReport(op, path string, opts []ParseOption) (*Card, error) {
	c, err := ParseFile(path, opts...)
	if err != nil {
		return nil, &Error{Op: op, Code: CodeOf(err), Msg: "Could not create card", Err: err}
	}
	if err := Validate(c); err != nil {
		return nil, &Error{Op: op, Code: CodeOf(err), Msg: "Not a valid card", Err: err}
	}
	return c, nil
}

// SummarizeFile parses and validates path and returns its summary.
func SummarizeFile(path string, opts ...ParseOption) (Summary, error) {
	c, err := loadReport("summary", path, opts)
	if err != nil {
		return Summary{}, err
	}
	return SummaryOf(path, c), nil
}

// ListPropertiesFile parses and validates path and returns its property rows.
func ListPropertiesFile(path string, opts ...ParseOption) ([]PropertyRow, error) {
	c, err := loadReport("properties", path, opts)
	if err != nil {
		return nil, err
	}
	return PropertiesOf(c), nil
}
