package vcard

import (
	"bufio"
	"bytes"
	"io"
	"os"
)

const crlf = "\r\n"

// Write renders c in canonical form: BEGIN, VERSION:4.0, FN, BDAY,
// ANNIVERSARY, the optional properties in stored order, END. A nil card
// still produces the framing lines. Output already written when an error
// occurs is left as is.
func Write(w io.Writer, c *Card) error {
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	ew.line("BEGIN:VCARD")
	ew.line("VERSION:4.0")
	if c != nil {
		if c.FN != nil {
			ew.property(c.FN)
		}
		ew.dateTime("BDAY", c.Birthday)
		ew.dateTime("ANNIVERSARY", c.Anniversary)
		for _, p := range c.Optional {
			if p != nil {
				ew.property(p)
			}
		}
	}
	ew.line("END:VCARD")

	if ew.err == nil {
		ew.err = bw.Flush()
	}
	if ew.err != nil {
		return wrapError("write", WriteError, ew.err)
	}
	return nil
}

// WriteFile creates or truncates name and writes c into it. The file is not
// removed when writing fails part way.
func WriteFile(name string, c *Card) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return wrapError("write", WriteError, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = wrapError("write", WriteError, cerr)
		}
	}()
	return Write(f, c)
}

// Marshal returns the canonical text of c.
func Marshal(c *Card) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// errWriter remembers the first write failure and turns later writes into
// no-ops.
type errWriter struct {
	w   *bufio.Writer
	err error
}

func (ew *errWriter) str(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = ew.w.WriteString(s)
}

func (ew *errWriter) line(s string) {
	ew.str(s)
	ew.str(crlf)
}

func (ew *errWriter) property(p *Property) {
	if p.Group != "" {
		ew.str(p.Group)
		ew.str(".")
	}
	ew.str(p.Name)
	for _, prm := range p.Parameters {
		ew.str(";")
		ew.str(prm.Name)
		ew.str("=")
		ew.str(prm.Value)
	}
	ew.str(":")
	for i, v := range p.Values {
		if i > 0 {
			ew.str(";")
		}
		ew.str(v)
	}
	ew.str(crlf)
}

func (ew *errWriter) dateTime(name string, d *DateTime) {
	switch {
	case d == nil, d.IsEmpty():
		return
	case d.IsText:
		ew.line(name + ";VALUE=text:" + d.Text)
	default:
		ew.line(name + ":" + d.Value())
	}
}
