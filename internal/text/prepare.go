// Package text prepares raw CLI and HTTP input for encoding.
//
// Preparation is strictly an outer-surface concern: the tokenizer core
// never rewrites its input, so that decoding a sequence reproduces the
// exact text that was encoded. Callers that want cleaned-up input run it
// through Prepare first and encode the result.
package text

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyText is returned when the input text is empty or whitespace-only.
var ErrEmptyText = errors.New("text is empty")

// Options controls the optional preparation steps.
type Options struct {
	// NFC applies Unicode NFC normalization, folding decomposed
	// sequences into their composed forms so they can match
	// single-rune vocabulary entries.
	NFC bool

	// CollapseSpaces folds runs of spaces and tabs into single spaces.
	CollapseSpaces bool
}

// Normalize trims surrounding whitespace, normalizes line endings to \n,
// and rejects empty or whitespace-only input.
func Normalize(s string) (string, error) {
	// CRLF first, then bare CR.
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.TrimSpace(s)

	if s == "" {
		return "", ErrEmptyText
	}

	return s, nil
}

// Prepare runs Normalize and then the steps selected in opts.
func Prepare(s string, opts Options) (string, error) {
	s, err := Normalize(s)
	if err != nil {
		return "", err
	}

	if opts.CollapseSpaces {
		s = collapseSpaces(s)
	}

	if opts.NFC {
		s = norm.NFC.String(s)
	}

	return s, nil
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inRun := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !inRun {
				b.WriteByte(' ')
			}
			inRun = true
			continue
		}
		inRun = false
		b.WriteRune(r)
	}

	return b.String()
}
