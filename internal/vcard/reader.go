package vcard

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// lineReader yields logical lines: CRLF-terminated physical lines with RFC
// folding undone.
type lineReader struct {
	r    *bufio.Reader
	line int // logical lines returned so far
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns the next logical line without its terminator, or io.EOF when
// the stream holds no more data.
func (lr *lineReader) next() (string, error) {
	lr.line++
	first, err := lr.physical()
	if errors.Is(err, io.EOF) {
		lr.line--
		return "", err
	}
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(first)
	for {
		c, err := lr.r.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", wrapError("read", OtherError, err)
		}
		if c != ' ' {
			_ = lr.r.UnreadByte()
			break
		}
		cont, err := lr.physical()
		if errors.Is(err, io.EOF) {
			// a lone fold marker at end of stream has no terminator
			return "", lr.errLine(InvalidProperty, "folded line is not CRLF terminated")
		}
		if err != nil {
			return "", err
		}
		b.WriteString(cont)
	}
	return b.String(), nil
}

// physical reads one physical line and strips its CRLF.
func (lr *lineReader) physical() (string, error) {
	s, err := lr.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", wrapError("read", OtherError, err)
	}
	if s == "" && errors.Is(err, io.EOF) {
		return "", io.EOF
	}
	if len(s) <= 1 || !strings.HasSuffix(s, "\r\n") {
		return "", lr.errLine(InvalidProperty, "line is not CRLF terminated")
	}
	return s[:len(s)-2], nil
}

// atEOF reports whether the stream is exhausted.
func (lr *lineReader) atEOF() bool {
	_, err := lr.r.Peek(1)
	return err != nil
}

func (lr *lineReader) errLine(code Code, msg string) *Error {
	return &Error{Op: "read", Code: code, Line: lr.line, Msg: msg}
}
