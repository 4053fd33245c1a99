// Package vcard parses, validates, writes and JSON-converts vCard 4.0 files.
//
// A card is read line by line: each CRLF-terminated physical line is unfolded
// into a logical line, cut into group, name, parameters and values, and
// dispatched by name. BEGIN, VERSION, FN, BDAY, ANNIVERSARY and END are held
// in dedicated fields; everything else lands in Card.Optional in file order.
package vcard

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Extension is the only file extension ParseFile accepts.
const Extension = ".vcf"

// Card is one parsed contact record.
type Card struct {
	FN          *Property
	Birthday    *DateTime
	Anniversary *DateTime
	Optional    []*Property
}

// NewCard returns a card whose FN property carries the single value name.
func NewCard(name string) *Card {
	fn := NewProperty("FN")
	fn.Values = append(fn.Values, name)
	return &Card{FN: fn, Optional: []*Property{}}
}

// AddProperty appends p to the optional properties. Nil values are ignored.
func (c *Card) AddProperty(p *Property) {
	if c == nil || p == nil {
		return
	}
	c.Optional = append(c.Optional, p)
}

// Name returns the first FN value, or "" when there is none.
func (c *Card) Name() string {
	if c == nil || c.FN == nil || len(c.FN.Values) == 0 {
		return ""
	}
	return c.FN.Values[0]
}

// Equal compares two cards field by field, optional properties in order.
func (c *Card) Equal(o *Card) bool {
	if c == nil || o == nil {
		return c == o
	}
	if !c.FN.Equal(o.FN) || !c.Birthday.Equal(o.Birthday) || !c.Anniversary.Equal(o.Anniversary) {
		return false
	}
	if len(c.Optional) != len(o.Optional) {
		return false
	}
	for i := range c.Optional {
		if !c.Optional[i].Equal(o.Optional[i]) {
			return false
		}
	}
	return true
}

// String dumps the card for debugging.
func (c *Card) String() string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	if c.FN != nil {
		b.WriteString(c.FN.String())
	}
	b.WriteString("\nBirthday:\n")
	if c.Birthday != nil {
		b.WriteString(c.Birthday.String())
	}
	b.WriteString("\nAnniversary:\n")
	if c.Anniversary != nil {
		b.WriteString(c.Anniversary.String())
	}
	for _, p := range c.Optional {
		b.WriteByte('\n')
		b.WriteString(p.String())
	}
	return b.String()
}

// ParseOption tunes Parse and ParseFile.
type ParseOption func(*parseConfig)

type parseConfig struct {
	lenientDates bool
	logger       *slog.Logger
}

// WithLenientDates makes malformed BDAY/ANNIVERSARY parameters non-fatal: the
// offending line is skipped and the slot keeps its previous value.
func WithLenientDates() ParseOption {
	return func(c *parseConfig) { c.lenientDates = true }
}

// WithLogger receives a warning for each date dropped under WithLenientDates
// and a debug trace per parsed card.
func WithLogger(l *slog.Logger) ParseOption {
	return func(c *parseConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// CheckFileName rejects names that do not end in ".vcf".
func CheckFileName(name string) error {
	if len(name) < len(Extension) || !strings.HasSuffix(name, Extension) {
		return newError("open", InvalidFile, "file name must end in "+Extension)
	}
	return nil
}

// ParseFile opens name, which must carry the .vcf extension, and parses it.
func ParseFile(name string, opts ...ParseOption) (*Card, error) {
	if err := CheckFileName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, wrapError("open", InvalidFile, err)
	}
	defer f.Close()

	return Parse(f, opts...)
}

type parseState int

const (
	expectBegin parseState = iota
	inBody
	done
)

// Parse reads exactly one card from r.
func Parse(r io.Reader, opts ...ParseOption) (*Card, error) {
	cfg := parseConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	a := assembler{
		cfg:   cfg,
		lines: newLineReader(r),
		card:  &Card{Optional: []*Property{}},
	}
	if err := a.run(); err != nil {
		return nil, err
	}
	return a.card, nil
}

type assembler struct {
	cfg       parseConfig
	lines     *lineReader
	card      *Card
	state     parseState
	versionOK bool
}

func (a *assembler) run() error {
	for {
		line, err := a.lines.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := a.step(splitLine(line)); err != nil {
			var e *Error
			if errors.As(err, &e) && e.Line == 0 {
				e.Line = a.lines.line
			}
			return err
		}
	}
	return a.finish()
}

func (a *assembler) step(cl contentLine) error {
	if cl.name == "" {
		return newError("parse", InvalidProperty, "missing property name")
	}
	if !cl.value.ok || cl.value.val == "" {
		return newError("parse", InvalidProperty, "missing value for "+cl.name)
	}

	if a.state == expectBegin {
		if cl.name != "BEGIN" || cl.value.val != "VCARD" {
			return newError("parse", InvalidCard, "card does not start with BEGIN:VCARD")
		}
		a.state = inBody
		return nil
	}
	if a.state == done {
		// END:VCARD is only recognized as the final line, so nothing follows it.
		return newError("parse", InvalidCard, "content after END:VCARD")
	}

	switch {
	case strings.EqualFold(cl.name, "VERSION"):
		if cl.value.val != "4.0" {
			return newError("parse", InvalidCard, "unsupported version "+quote(cl.value.val))
		}
		a.versionOK = true

	case strings.EqualFold(cl.name, "FN"):
		fn := NewProperty("")
		if err := fn.apply(cl); err != nil {
			return err
		}
		a.card.FN = fn

	case strings.EqualFold(cl.name, "BDAY"):
		dt, err := a.dateTime(cl)
		if err != nil {
			return err
		}
		if dt != nil {
			a.card.Birthday = dt
		}

	case strings.EqualFold(cl.name, "ANNIVERSARY"):
		dt, err := a.dateTime(cl)
		if err != nil {
			return err
		}
		if dt != nil {
			a.card.Anniversary = dt
		}

	case a.lines.atEOF() && cl.name == "END" && cl.value.val == "VCARD":
		a.state = done

	default:
		p := NewProperty("")
		if err := p.apply(cl); err != nil {
			return err
		}
		a.card.Optional = append(a.card.Optional, p)
	}
	return nil
}

func (a *assembler) dateTime(cl contentLine) (*DateTime, error) {
	dt, err := newDateTime(cl.params, cl.value.val)
	if err == nil {
		return dt, nil
	}
	if a.cfg.lenientDates {
		a.cfg.logger.Warn("vcard: ignoring malformed date",
			slog.String("name", cl.name),
			slog.Int("line", a.lines.line),
			slog.String("error", err.Error()))
		return nil, nil
	}
	return nil, err
}

func (a *assembler) finish() error {
	switch {
	case a.card.FN == nil:
		return newError("parse", InvalidCard, "missing FN")
	case !a.versionOK:
		return newError("parse", InvalidCard, "missing VERSION:4.0")
	case a.state != done:
		return newError("parse", InvalidCard, "missing END:VCARD")
	}
	a.cfg.logger.Debug("vcard: parsed card",
		slog.String("fn", a.card.Name()),
		slog.Int("optional", len(a.card.Optional)))
	return nil
}
