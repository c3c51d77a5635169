package tokenizer

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrUnexpectedEOF is returned when the vocabulary source ends before the
// declared number of entries has been read. It indicates a truncated or
// corrupt vocabulary file, as opposed to a transport-level read failure.
var ErrUnexpectedEOF = errors.New("vocabulary: unexpected end of input")

// Vocabulary is the ordered alphabet of subword entries and their
// index-aligned merge scores, loaded once from a binary vocabulary file.
// Entry contents need not be unique; the entry index is the canonical
// token id. A Vocabulary is immutable after load and safe for concurrent
// use by any number of encoders.
type Vocabulary struct {
	entries     []string
	scores      []float32
	maxEntryLen int

	// byContent maps entry content to the id and score of its FIRST
	// occurrence, matching the first-match semantics of a linear scan
	// over the alphabet.
	byContent map[string]entryRef
}

type entryRef struct {
	id    Token
	score float32
}

// LoadOption configures vocabulary loading.
type LoadOption func(*loadOptions)

type loadOptions struct {
	logger *slog.Logger
}

// WithLoadLogger sets the logger used for non-fatal load diagnostics.
// Defaults to slog.Default().
func WithLoadLogger(l *slog.Logger) LoadOption {
	return func(o *loadOptions) { o.logger = l }
}

// Load reads a binary vocabulary from r. The layout is fixed and
// little-endian throughout (the file format does not self-describe its
// byte order; this implementation pins the de-facto convention):
//
//	int32                     maxEntryLen (advisory upper bound)
//	vocabSize × {
//	    float32               merge score
//	    int32                 byte length of the entry
//	    <length> raw bytes    entry content (not validated as UTF-8)
//	}
//
// A source that ends before vocabSize entries have been read fails with
// ErrUnexpectedEOF. An entry longer than maxEntryLen and bytes trailing
// the final entry are reported as warnings and otherwise ignored.
func Load(r io.Reader, vocabSize int, opts ...LoadOption) (*Vocabulary, error) {
	o := loadOptions{logger: slog.Default()}
	for _, fn := range opts {
		fn(&o)
	}

	if vocabSize <= 0 {
		return nil, fmt.Errorf("vocabulary size must be positive, got %d", vocabSize)
	}

	br := bufio.NewReader(r)

	var maxEntryLen int32
	if err := readField(br, &maxEntryLen, "max entry length"); err != nil {
		return nil, err
	}

	v := &Vocabulary{
		entries:     make([]string, 0, vocabSize),
		scores:      make([]float32, 0, vocabSize),
		maxEntryLen: int(maxEntryLen),
		byContent:   make(map[string]entryRef, vocabSize),
	}

	for i := 0; i < vocabSize; i++ {
		var score float32
		if err := readField(br, &score, fmt.Sprintf("entry %d score", i)); err != nil {
			return nil, err
		}

		var length int32
		if err := readField(br, &length, fmt.Sprintf("entry %d length", i)); err != nil {
			return nil, err
		}

		if length < 0 {
			return nil, fmt.Errorf("entry %d declares negative length %d", i, length)
		}

		if int(length) > v.maxEntryLen {
			o.logger.Warn("vocabulary entry exceeds declared maximum length",
				slog.Int("entry", i),
				slog.Int("length", int(length)),
				slog.Int("max_entry_len", v.maxEntryLen),
			)
		}

		content := make([]byte, length)
		if _, err := io.ReadFull(br, content); err != nil {
			return nil, fmt.Errorf("entry %d content: %w", i, mapReadErr(err))
		}

		id := Token(i)
		v.entries = append(v.entries, string(content))
		v.scores = append(v.scores, score)
		if _, exists := v.byContent[string(content)]; !exists {
			v.byContent[string(content)] = entryRef{id: id, score: score}
		}
	}

	// The format carries no trailer; anything left over is suspicious
	// but not fatal.
	if extra, err := br.Peek(1); err == nil && len(extra) > 0 {
		o.logger.Warn("vocabulary source has trailing bytes after final entry",
			slog.Int("entries", vocabSize),
		)
	}

	return v, nil
}

// LoadFile opens path and loads a vocabulary from it via Load.
func LoadFile(path string, vocabSize int, opts ...LoadOption) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	v, err := Load(f, vocabSize, opts...)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary %q: %w", path, err)
	}

	return v, nil
}

// readField reads one fixed-width little-endian field, translating a
// premature end of input into ErrUnexpectedEOF.
func readField(r io.Reader, dst any, what string) error {
	if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
		return fmt.Errorf("%s: %w", what, mapReadErr(err))
	}
	return nil
}

// mapReadErr folds the two stdlib truncation errors into the package
// sentinel so callers can errors.Is against a single kind. Transport
// errors pass through unchanged.
func mapReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}
	return err
}

// Len returns the number of entries in the vocabulary.
func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// MaxEntryLen returns the advisory maximum entry byte length declared in
// the vocabulary file header.
func (v *Vocabulary) MaxEntryLen() int {
	return v.maxEntryLen
}

// Entry returns the content of the entry with the given id.
// The id must be in range; out-of-range ids are a programmer error.
func (v *Vocabulary) Entry(id Token) string {
	return v.entries[id]
}

// Score returns the merge score of the entry with the given id.
func (v *Vocabulary) Score(id Token) float32 {
	return v.scores[id]
}

// lookup returns the id and score of the first entry whose content equals s.
func (v *Vocabulary) lookup(s string) (Token, float32, bool) {
	ref, ok := v.byContent[s]
	return ref.id, ref.score, ok
}
