package vcard

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCutUnescaped(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		delim         byte
		before, after string
		found         bool
	}{
		{"plain", "a:b", ':', "a", "b", true},
		{"first of many", "a:b:c", ':', "a", "b:c", true},
		{"escaped skipped", `a\:b:c`, ':', `a\:b`, "c", true},
		{"only escaped", `a\:b`, ':', `a\:b`, "", false},
		{"leading delimiter", ":x", ':', "", "x", true},
		{"trailing delimiter", "x;", ';', "x", "", true},
		{"absent", "abc", '.', "abc", "", false},
		{"empty", "", ';', "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, after, found := cutUnescaped(tt.in, tt.delim)
			assert.Equal(t, tt.before, before)
			assert.Equal(t, tt.after, after)
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestSplitUnescaped_KeepsEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "", "b", ""}, splitUnescaped("a;;b;", ';'))
	assert.Equal(t, []string{"", "x"}, splitUnescaped(";x", ';'))
	assert.Equal(t, []string{`a\;b`, "c"}, splitUnescaped(`a\;b;c`, ';'))
	assert.Equal(t, []string{""}, splitUnescaped("", ';'))
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		line   string
		group  opt
		name   string
		params opt
		value  opt
	}{
		{"FN:Jane", opt{}, "FN", opt{}, some("Jane")},
		{"work.TEL;TYPE=cell:555", some("work"), "TEL", some("TYPE=cell"), some("555")},
		{"item1.EMAIL:a@b.c", some("item1"), "EMAIL", opt{}, some("a@b.c")},
		{"NOTE", opt{}, "NOTE", opt{}, opt{}},
		{"NOTE:", opt{}, "NOTE", opt{}, some("")},
		{"X;A=1;B=2:v;w", opt{}, "X", some("A=1;B=2"), some("v;w")},
		{`NOTE;X=a\:b:c`, opt{}, "NOTE", some(`X=a\:b`), some("c")},
		{"URL:http://x.y", opt{}, "URL", opt{}, some("http://x.y")},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cl := splitLine(tt.line)
			assert.Equal(t, tt.group, cl.group, "group")
			assert.Equal(t, tt.name, cl.name, "name")
			assert.Equal(t, tt.params, cl.params, "params")
			assert.Equal(t, tt.value, cl.value, "value")
		})
	}
}

func TestSplitLine_EscapedValueDelimiter(t *testing.T) {
	cl := splitLine(`NOTE\:x:y`)
	require.True(t, cl.value.ok)
	assert.Equal(t, `NOTE\:x`, cl.name)
	assert.Equal(t, "y", cl.value.val)
}

func TestLineReader_Unfolds(t *testing.T) {
	lr := newLineReader(strings.NewReader("FN:Hello\r\n World\r\nNOTE:x\r\n"))

	line, err := lr.next()
	require.NoError(t, err)
	assert.Equal(t, "FN:HelloWorld", line)
	assert.False(t, lr.atEOF())

	line, err = lr.next()
	require.NoError(t, err)
	assert.Equal(t, "NOTE:x", line)
	assert.True(t, lr.atEOF())

	_, err = lr.next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_MultipleFolds(t *testing.T) {
	lr := newLineReader(strings.NewReader("NOTE:a\r\n b\r\n  c\r\n"))
	line, err := lr.next()
	require.NoError(t, err)
	assert.Equal(t, "NOTE:ab c", line)
}

func TestLineReader_BadTerminators(t *testing.T) {
	for _, in := range []string{
		"FN:x\n",
		"FN:x",
		"\n",
		"FN:x\r\n y",
		"FN:x\r\n ",
	} {
		lr := newLineReader(strings.NewReader(in))
		_, err := lr.next()
		require.Error(t, err, "input %q", in)
		assert.Equal(t, InvalidProperty, CodeOf(err), "input %q", in)
	}
}
