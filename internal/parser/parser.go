// Package parser splits a command line into pipeline stages.
package parser

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Stage is one command of a pipeline.
type Stage struct {
	Name string
	Args []string
}

// ParseError is returned when a stage cannot be split into words.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse splits line on '|' and each stage into a command name and its
// arguments. Quotes and backslash escapes are honoured the way a POSIX shell
// does, so a quoted or escaped '|' is part of a word. A quote character with
// no closing partner later in the line is taken literally. Stages without a
// command name are dropped. The number of stages is not limited.
func Parse(line string) ([]Stage, error) {
	var stages []Stage

	for _, part := range splitPipes(line) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		words, err := shellquote.Split(part)
		if err != nil {
			return nil, &ParseError{Stage: part, Err: err}
		}

		if len(words) == 0 {
			continue
		}

		stages = append(stages, Stage{Name: words[0], Args: words[1:]})
	}

	return stages, nil
}

// splitPipes cuts line at every unquoted, unescaped '|'. Unmatched quote
// characters are escaped in the returned stages.
func splitPipes(line string) []string {
	var (
		parts   []string
		b       strings.Builder
		quote   rune
		escaped bool
	)

	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			if !strings.ContainsRune(line[i+1:], r) {
				b.WriteByte('\\')
				break
			}
			quote = r
		case r == '|':
			parts = append(parts, b.String())
			b.Reset()
			continue
		}

		b.WriteRune(r)
	}

	return append(parts, b.String())
}
