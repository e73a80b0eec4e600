package lex

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dekarrin/ictiobus/grammar"
)

// groupInfo resolves one named capture group of the combined alternation
// regex back to the terminal it stands for.
type groupInfo struct {
	terminal int
	name     string
}

// Tokenizer scans input against a single alternation regex built directly
// from a Grammar's declared terminal patterns (spec.md §4.B): one branch
// per terminal, each wrapped in its own named group, in declaration
// order. Go's regexp engine resolves alternation leftmost-first, so when
// two branches can both match at a position the one declared first wins —
// not the one that matches the most bytes. A grammar author who wants a
// keyword to win over a broader identifier pattern must declare the
// keyword first.
type Tokenizer struct {
	g       *grammar.Grammar
	re      *regexp.Regexp
	byGroup map[string]groupInfo
}

// New compiles the grammar's terminal patterns into one alternation regex.
// It returns a *grammar.GrammarError if the combined pattern fails to
// compile as a regexp.
func New(g *grammar.Grammar) (*Tokenizer, error) {
	tz := &Tokenizer{g: g, byGroup: map[string]groupInfo{}}

	var branches []string
	for _, t := range g.Terminals() {
		if t.IsEOF() {
			continue
		}
		group := fmt.Sprintf("t%d", t.Index)
		branches = append(branches, fmt.Sprintf("(?P<%s>%s)", group, t.Pattern))
		tz.byGroup[group] = groupInfo{terminal: t.Index, name: t.Name}
	}
	if len(branches) == 0 {
		return nil, fmt.Errorf("lex: grammar declares no terminals")
	}

	re, err := regexp.Compile(`\A(?:` + strings.Join(branches, "|") + `)`)
	if err != nil {
		return nil, &grammar.GrammarError{Message: fmt.Sprintf("compile combined terminal pattern: %v", err)}
	}
	tz.re = re
	return tz, nil
}

// UnmatchedInputError reports a run of input that no terminal pattern
// could match, returned only when the grammar was built with
// SkipUnmatchedInput(false).
type UnmatchedInputError struct {
	Line, Col int
	Snippet   string
}

func (e *UnmatchedInputError) Error() string {
	return fmt.Sprintf("lex: no terminal matches input at line %d, col %d: %q", e.Line, e.Col, e.Snippet)
}

// Tokenize scans all of input and returns the resulting token stream,
// terminated by a synthesized end-of-input token. At each position the
// combined alternation regex is matched once; the first named group with
// a non-null submatch identifies the terminal, per spec.md §4.B. When the
// grammar was built with SkipUnmatchedInput (the default), bytes matching
// no terminal are silently skipped one rune at a time; otherwise the
// first such run produces an *UnmatchedInputError.
func (tz *Tokenizer) Tokenize(input string) ([]Token, error) {
	lines := strings.Split(input, "\n")
	lineOf := func(n int) string {
		if n-1 >= 0 && n-1 < len(lines) {
			return lines[n-1]
		}
		return ""
	}

	names := tz.re.SubexpNames()

	var tokens []Token
	line, col := 1, 1
	pos := 0
	for pos < len(input) {
		rest := input[pos:]

		loc := tz.re.FindStringSubmatchIndex(rest)
		matchLen := 0
		var info groupInfo
		matched := false
		if loc != nil {
			matchLen = loc[1]
			for i := 1; i < len(names); i++ {
				if loc[2*i] != -1 {
					info = tz.byGroup[names[i]]
					matched = true
					break
				}
			}
		}

		if !matched || matchLen == 0 {
			r, size := utf8.DecodeRuneInString(rest)
			if !tz.g.SkipUnmatchedInput() {
				snippet := rest
				if len(snippet) > 20 {
					snippet = snippet[:20]
				}
				return nil, &UnmatchedInputError{Line: line, Col: col, Snippet: snippet}
			}
			advance(&line, &col, r)
			pos += size
			continue
		}

		lexeme := rest[:matchLen]
		tokens = append(tokens, Token{
			Terminal:  info.terminal,
			ClassName: info.name,
			Lexeme:    lexeme,
			Start:     pos,
			Stop:      pos + matchLen,
			Line:      line,
			Col:       col,
			FullLine:  lineOf(line),
		})
		for _, r := range lexeme {
			advance(&line, &col, r)
		}
		pos += matchLen
	}

	tokens = append(tokens, Token{
		Terminal:  grammar.EOFIndex,
		ClassName: grammar.EOFName,
		Start:     len(input),
		Stop:      len(input),
		Line:      line,
		Col:       col,
		FullLine:  lineOf(line),
	})
	return tokens, nil
}

func advance(line, col *int, r rune) {
	if r == '\n' {
		*line++
		*col = 1
		return
	}
	*col++
}
