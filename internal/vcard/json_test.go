package vcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringsJSON(t *testing.T) {
	assert.Equal(t, `[]`, StringsToJSON(nil))
	assert.Equal(t, `["a","b \"c\"","<x>"]`, StringsToJSON([]string{"a", `b "c"`, "<x>"}))

	got, err := StringsFromJSON(` [ "a" , "" ] `)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", ""}, got)

	for _, in := range []string{"", "[", `["a",1]`, `{"a":1}`, `["a"] x`} {
		_, err := StringsFromJSON(in)
		assert.Equal(t, InvalidProperty, CodeOf(err), "input %q", in)
	}
}

func TestPropertyJSON_RoundTrip(t *testing.T) {
	p := prop("TEL", "555-1234")
	p.Group = "work"

	s := PropertyToJSON(p)
	assert.Equal(t, `{"group":"work","name":"TEL","values":["555-1234"]}`, s)

	back, err := PropertyFromJSON(s)
	require.NoError(t, err)
	assert.True(t, p.Equal(back))
	assert.NotNil(t, back.Parameters)

	assert.Equal(t, "", PropertyToJSON(nil))
}

func TestPropertyJSON_Rejects(t *testing.T) {
	for _, in := range []string{
		`{"name":"TEL","group":"","values":[]}`,
		`{"group":"","name":"TEL"}`,
		`{"group":"","name":"TEL","values":[],"extra":1}`,
		`{"group":1,"name":"TEL","values":[]}`,
		`not json`,
	} {
		_, err := PropertyFromJSON(in)
		assert.Equal(t, InvalidProperty, CodeOf(err), "input %q", in)
	}
}

func TestDateTimeJSON(t *testing.T) {
	d := &DateTime{Date: "19850312", Time: "140000", UTC: true}
	s := DateTimeToJSON(d)
	assert.Equal(t, `{"isText":false,"date":"19850312","time":"140000","text":"","isUTC":true}`, s)

	back, err := DateTimeFromJSON(s)
	require.NoError(t, err)
	assert.True(t, d.Equal(back))

	text := &DateTime{IsText: true, Text: "circa 1990"}
	back, err = DateTimeFromJSON(DateTimeToJSON(text))
	require.NoError(t, err)
	assert.Equal(t, text, back)

	assert.Equal(t, "", DateTimeToJSON(nil))
}

func TestDateTimeJSON_Rejects(t *testing.T) {
	for _, in := range []string{
		`{"isText":false,"date":"198503120","time":"","text":"","isUTC":false}`,
		`{"isText":false,"date":"","time":"1400000","text":"","isUTC":false}`,
		`{"isText":"no","date":"","time":"","text":"","isUTC":false}`,
		`{"date":"","isText":false,"time":"","text":"","isUTC":false}`,
		`{"isText":false,"date":"","time":"","text":""}`,
		`{"isText":true,"date":"","time":"","text":"","isUTC":false}`,
	} {
		_, err := DateTimeFromJSON(in)
		assert.Equal(t, InvalidDateTime, CodeOf(err), "input %q", in)
	}
}

func TestCardJSON(t *testing.T) {
	c := NewCard("Jane Doe")
	c.AddProperty(prop("NOTE", "dropped"))
	s := CardToJSON(c)
	assert.Equal(t, `{"FN":"Jane Doe"}`, s)

	back, err := CardFromJSON(s)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", back.Name())
	assert.Empty(t, back.Optional)
	assert.NoError(t, Validate(back))

	multi, err := CardFromJSON(`{"FN":"a;b"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, multi.FN.Values)
	assert.Equal(t, `{"FN":"a;b"}`, CardToJSON(multi))

	assert.Equal(t, "", CardToJSON(nil))
	assert.Equal(t, "", CardToJSON(&Card{}))

	lossy, err := CardFromJSON(CardToJSON(NewCard("Zo\xffe")))
	require.NoError(t, err)
	assert.Equal(t, "Zo\uFFFDe", lossy.Name())

	for _, in := range []string{`{}`, `{"N":"x"}`, `{"FN":1}`, `{"FN":"x","N":"y"}`} {
		_, err := CardFromJSON(in)
		assert.Equal(t, InvalidCard, CodeOf(err), "input %q", in)
	}
}
