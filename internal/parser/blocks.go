package parser

import (
	"strings"

	"github.com/sulloa07/orbit-sim/internal/util"
)

// Line is a non-empty body line with its comment stripped.
type Line struct {
	Num  int
	Text string
}

// Block is `<keyword> [header] { ... }`. A top-level line that opens no
// block is returned as a Bare block whose Header holds the rest of the line.
type Block struct {
	Keyword    string
	Header     string
	Line       int
	Lines      []Line
	Children   []Block
	Bare       bool
	Terminated bool
}

// Text is the block's first line as written, without the brace.
func (b Block) Text() string {
	if b.Header == "" {
		return b.Keyword
	}
	return b.Keyword + " " + b.Header
}

type scanner struct {
	lines []string
	pos   int
	diags []Diagnostic
}

// ParseBlocks splits a document into top-level blocks.
//
// Comments (`//` to end of line) and blank lines are discarded. A header is
// a line ending in '{', or a line followed by a line holding only '{'.
// A block missing its closing brace runs to end of input; it is reported as
// UnterminatedBlock but kept.
func ParseBlocks(src string) ([]Block, []Diagnostic) {
	s := &scanner{lines: strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")}

	var blocks []Block
	for {
		text, num, ok := s.next()
		if !ok {
			break
		}
		if header, opens, closed := s.header(text); opens {
			blocks = append(blocks, s.block(header, num, closed))
			continue
		}
		keyword, rest := splitHeader(text)
		blocks = append(blocks, Block{Keyword: keyword, Header: rest, Line: num, Bare: true, Terminated: true})
	}
	return blocks, s.diags
}

// next returns the next non-empty cleaned line and its 1-based number.
func (s *scanner) next() (string, int, bool) {
	for s.pos < len(s.lines) {
		text := util.StripComment(s.lines[s.pos])
		s.pos++
		if text != "" {
			return text, s.pos, true
		}
	}
	return "", 0, false
}

// peek returns the next non-empty cleaned line without consuming it.
func (s *scanner) peek() (string, int) {
	for i := s.pos; i < len(s.lines); i++ {
		if text := util.StripComment(s.lines[i]); text != "" {
			return text, i
		}
	}
	return "", -1
}

// header reports whether text opens a block, consuming a lone '{' line when
// the brace sits on the following line. closed is set for an empty `{}` body.
func (s *scanner) header(text string) (h string, opens, closed bool) {
	if before, ok := strings.CutSuffix(text, "{}"); ok {
		return strings.TrimSpace(before), true, true
	}
	if before, ok := strings.CutSuffix(text, "{"); ok {
		return strings.TrimSpace(before), true, false
	}
	if text == "}" {
		return "", false, false
	}
	if next, idx := s.peek(); next == "{" {
		s.pos = idx + 1
		return text, true, false
	}
	return "", false, false
}

func (s *scanner) block(header string, num int, closed bool) Block {
	keyword, rest := splitHeader(header)
	b := Block{Keyword: keyword, Header: rest, Line: num}
	if closed {
		b.Terminated = true
		return b
	}

	for {
		text, n, ok := s.next()
		if !ok {
			s.diags = append(s.diags, Diagnostic{
				Kind:    UnterminatedBlock,
				Line:    num,
				Message: "block " + b.Text() + " has no closing brace; it extends to end of input",
			})
			return b
		}
		if text == "}" {
			b.Terminated = true
			return b
		}
		if h, opens, closed := s.header(text); opens {
			b.Children = append(b.Children, s.block(h, n, closed))
			continue
		}
		b.Lines = append(b.Lines, Line{Num: n, Text: text})
	}
}

// splitHeader separates the leading keyword from the rest of a header.
func splitHeader(header string) (keyword, rest string) {
	header = strings.TrimSpace(header)
	i := strings.IndexFunc(header, func(r rune) bool { return r == ' ' || r == '\t' })
	if i < 0 {
		return header, ""
	}
	return header[:i], strings.TrimSpace(header[i+1:])
}
