package vcard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// The JSON forms are fixed-shape: keys must appear in the documented order
// and nothing else may appear. Decoders fail closed on any deviation.

// StringsToJSON renders values as a JSON array of strings.
func StringsToJSON(values []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(jsonString(v))
	}
	b.WriteByte(']')
	return b.String()
}

// StringsFromJSON parses a JSON array of strings.
func StringsFromJSON(s string) ([]string, error) {
	js := newJSONScanner(s, "strings from json", InvalidProperty)
	values, err := js.stringList()
	if err != nil {
		return nil, err
	}
	if err := js.end(); err != nil {
		return nil, err
	}
	return values, nil
}

// PropertyToJSON renders {"group":..,"name":..,"values":[..]}. A nil
// property yields "". Invalid UTF-8 is replaced with U+FFFD.
func PropertyToJSON(p *Property) string {
	if p == nil {
		return ""
	}
	return `{"group":` + jsonString(p.Group) +
		`,"name":` + jsonString(p.Name) +
		`,"values":` + StringsToJSON(p.Values) + `}`
}

// PropertyFromJSON parses the shape produced by PropertyToJSON.
func PropertyFromJSON(s string) (*Property, error) {
	js := newJSONScanner(s, "property from json", InvalidProperty)
	p := NewProperty("")
	var err error
	if err = js.delim('{'); err != nil {
		return nil, err
	}
	if p.Group, err = js.stringField("group"); err != nil {
		return nil, err
	}
	if p.Name, err = js.stringField("name"); err != nil {
		return nil, err
	}
	if err = js.key("values"); err != nil {
		return nil, err
	}
	if p.Values, err = js.stringList(); err != nil {
		return nil, err
	}
	if err = js.delim('}'); err != nil {
		return nil, err
	}
	if err = js.end(); err != nil {
		return nil, err
	}
	return p, nil
}

// DateTimeToJSON renders
// {"isText":..,"date":..,"time":..,"text":..,"isUTC":..}. A nil value
// yields "".
func DateTimeToJSON(d *DateTime) string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf(`{"isText":%t,"date":%s,"time":%s,"text":%s,"isUTC":%t}`,
		d.IsText, jsonString(d.Date), jsonString(d.Time), jsonString(d.Text), d.UTC)
}

// DateTimeFromJSON parses the shape produced by DateTimeToJSON. Dates longer
// than 8 and times longer than 6 characters are rejected, as is a text-mode
// value with empty text, which would serialize to an unparsable line.
func DateTimeFromJSON(s string) (*DateTime, error) {
	js := newJSONScanner(s, "date-time from json", InvalidDateTime)
	d := &DateTime{}
	var err error
	if err = js.delim('{'); err != nil {
		return nil, err
	}
	if d.IsText, err = js.boolField("isText"); err != nil {
		return nil, err
	}
	if d.Date, err = js.stringField("date"); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(d.Date) > maxDateLen {
		return nil, js.fail("date longer than 8 characters")
	}
	if d.Time, err = js.stringField("time"); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(d.Time) > maxTimeLen {
		return nil, js.fail("time longer than 6 characters")
	}
	if d.Text, err = js.stringField("text"); err != nil {
		return nil, err
	}
	if d.IsText && d.Text == "" {
		return nil, js.fail("text-mode value with empty text")
	}
	if d.UTC, err = js.boolField("isUTC"); err != nil {
		return nil, err
	}
	if err = js.delim('}'); err != nil {
		return nil, err
	}
	if err = js.end(); err != nil {
		return nil, err
	}
	return d, nil
}

// CardToJSON renders the partial card form {"FN":".."}. Multiple FN values
// are joined with ';' so CardFromJSON restores them. A card without FN
// yields "". Invalid UTF-8 in FN is replaced with U+FFFD, so such names do
// not survive a round trip.
func CardToJSON(c *Card) string {
	if c == nil || c.FN == nil {
		return ""
	}
	return `{"FN":` + jsonString(strings.Join(c.FN.Values, ";")) + `}`
}

// CardFromJSON builds a card holding only an FN property from {"FN":".."}.
// The value is split on unescaped ';' like a content line value.
func CardFromJSON(s string) (*Card, error) {
	js := newJSONScanner(s, "card from json", InvalidCard)
	if err := js.delim('{'); err != nil {
		return nil, err
	}
	name, err := js.stringField("FN")
	if err != nil {
		return nil, err
	}
	if err := js.delim('}'); err != nil {
		return nil, err
	}
	if err := js.end(); err != nil {
		return nil, err
	}

	fn := NewProperty("FN")
	fn.addValues(some(name))
	return &Card{FN: fn, Optional: []*Property{}}, nil
}

func jsonString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// jsonScanner walks a JSON document token by token, enforcing one shape.
type jsonScanner struct {
	dec  *json.Decoder
	op   string
	code Code
}

func newJSONScanner(s, op string, code Code) *jsonScanner {
	return &jsonScanner{dec: json.NewDecoder(strings.NewReader(s)), op: op, code: code}
}

func (js *jsonScanner) fail(msg string) error {
	return newError(js.op, js.code, msg)
}

func (js *jsonScanner) token() (json.Token, error) {
	tok, err := js.dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, js.fail("unexpected end of input")
	}
	if err != nil {
		return nil, wrapError(js.op, js.code, err)
	}
	return tok, nil
}

func (js *jsonScanner) delim(want json.Delim) error {
	tok, err := js.token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return js.fail(fmt.Sprintf("expected %q, got %v", rune(want), tok))
	}
	return nil
}

func (js *jsonScanner) key(name string) error {
	tok, err := js.token()
	if err != nil {
		return err
	}
	k, ok := tok.(string)
	if !ok || !strings.EqualFold(k, name) {
		return js.fail(fmt.Sprintf("expected key %q, got %v", name, tok))
	}
	return nil
}

func (js *jsonScanner) str() (string, error) {
	tok, err := js.token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", js.fail(fmt.Sprintf("expected string, got %v", tok))
	}
	return s, nil
}

func (js *jsonScanner) stringField(name string) (string, error) {
	if err := js.key(name); err != nil {
		return "", err
	}
	return js.str()
}

func (js *jsonScanner) boolField(name string) (bool, error) {
	if err := js.key(name); err != nil {
		return false, err
	}
	tok, err := js.token()
	if err != nil {
		return false, err
	}
	b, ok := tok.(bool)
	if !ok {
		return false, js.fail(fmt.Sprintf("expected boolean for %q, got %v", name, tok))
	}
	return b, nil
}

func (js *jsonScanner) stringList() ([]string, error) {
	if err := js.delim('['); err != nil {
		return nil, err
	}
	out := []string{}
	for js.dec.More() {
		s, err := js.str()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := js.delim(']'); err != nil {
		return nil, err
	}
	return out, nil
}

// end requires that nothing but whitespace follows the document.
func (js *jsonScanner) end() error {
	tok, err := js.dec.Token()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return wrapError(js.op, js.code, err)
	}
	return js.fail(fmt.Sprintf("unexpected trailing %v", tok))
}
