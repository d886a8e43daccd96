package symbol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hitzhangjie/codesize/pkg/blame"
)

// ParseError a malformed row of a line-table dump
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseLineDump reads the `dwarfdump -l` text form, one row per line:
//
//	0x000024c0  [  52, 0] NS uri: "/src/f1.c"
//	0x000024d5  [1127, 0] NS
//	0x0000255c  [1123, 0] ET
//
// Lines not starting with '0' are headers and skipped. The uri carries over
// to following rows until the next uri: flag, ET marks the end of a sequence.
func ParseLineDump(r io.Reader) blame.EventSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &lineDump{sc: sc}
}

type lineDump struct {
	sc     *bufio.Scanner
	lineNo int
	uri    string
}

func (d *lineDump) Next() (blame.Event, error) {
	for d.sc.Scan() {
		d.lineNo++
		text := d.sc.Text()
		if len(text) == 0 || text[0] != '0' {
			continue
		}

		ev, err := d.parseRow(text)
		if err != nil {
			return blame.Event{}, &ParseError{Line: d.lineNo, Text: text, Err: err}
		}
		return ev, nil
	}
	if err := d.sc.Err(); err != nil {
		return blame.Event{}, err
	}
	return blame.Event{}, io.EOF
}

func (d *lineDump) parseRow(text string) (blame.Event, error) {
	open := strings.IndexByte(text, '[')
	if open < 0 {
		return blame.Event{}, fmt.Errorf("missing '['")
	}
	addr, err := parseAddr(text[:open])
	if err != nil {
		return blame.Event{}, fmt.Errorf("invalid address: %v", err)
	}

	rest := text[open+1:]
	comma := strings.IndexByte(rest, ',')
	end := strings.IndexByte(rest, ']')
	if comma < 0 || end < comma {
		return blame.Event{}, fmt.Errorf("invalid [line, column]")
	}
	line, err := strconv.ParseUint(strings.TrimSpace(rest[:comma]), 10, 32)
	if err != nil {
		return blame.Event{}, fmt.Errorf("invalid line: %v", err)
	}

	flags := rest[end+1:]
	if i := strings.Index(flags, "uri:"); i >= 0 {
		uri, err := unquoteURI(strings.TrimSpace(flags[i+len("uri:"):]))
		if err != nil {
			return blame.Event{}, err
		}
		d.uri = uri
		flags = flags[:i]
	}
	if d.uri == "" {
		return blame.Event{}, blame.ErrNoURI
	}

	ev := blame.Event{Address: addr, URI: d.uri, Line: uint32(line), InText: true}
	for _, f := range strings.Fields(flags) {
		if f == "ET" {
			ev.InText = false
		}
	}
	return ev, nil
}

func unquoteURI(s string) (string, error) {
	if !strings.HasPrefix(s, `"`) {
		if fields := strings.Fields(s); len(fields) != 0 {
			return fields[0], nil
		}
		return "", fmt.Errorf("empty uri")
	}
	end := strings.IndexByte(s[1:], '"')
	if end < 0 {
		return "", fmt.Errorf("unterminated uri")
	}
	return s[1 : 1+end], nil
}

// parseAddr reads a hex address, with or without the 0x prefix.
func parseAddr(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return strconv.ParseUint(s, 16, 64)
}
