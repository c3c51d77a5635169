// Package tokenizer encodes text into token ids over a fixed pre-trained
// subword vocabulary using greedy score-ordered pair merging, and decodes
// token sequences back into text. It is the codec used to prepare prompts
// for a model that consumes token sequences only.
package tokenizer

import (
	"fmt"
	"log/slog"
	"math"
)

// Token is an index into a Vocabulary's alphabet. A fixed 32-bit width is
// sufficient for any realistic vocabulary size.
type Token = uint32

// OOVPolicy selects how Encode treats input runes that have no
// single-rune entry in the vocabulary.
type OOVPolicy int

const (
	// OOVDrop silently omits unknown runes from the output, emitting a
	// diagnostic per occurrence. This is the default and means decoded
	// output can be shorter than the original input.
	OOVDrop OOVPolicy = iota

	// OOVSubstitute replaces each unknown rune with the placeholder
	// token configured via WithPlaceholder.
	//
	// There is no fail policy here: Encode never fails by contract.
	// Callers that want encoding to stop on the first unknown rune use
	// EncodeStrict instead.
	OOVSubstitute
)

// Tokenizer encodes text against one immutable Vocabulary. It holds no
// mutable state, so a single Tokenizer may serve concurrent Encode calls.
type Tokenizer struct {
	vocab       *Vocabulary
	log         *slog.Logger
	oov         OOVPolicy
	placeholder Token
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithLogger sets the logger that receives encode diagnostics.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Tokenizer) { t.log = l }
}

// WithOOVPolicy sets the out-of-vocabulary handling policy.
func WithOOVPolicy(p OOVPolicy) Option {
	return func(t *Tokenizer) { t.oov = p }
}

// WithPlaceholder sets the token substituted for unknown runes under
// OOVSubstitute.
func WithPlaceholder(id Token) Option {
	return func(t *Tokenizer) { t.placeholder = id }
}

// New returns a Tokenizer over the given vocabulary.
func New(vocab *Vocabulary, opts ...Option) *Tokenizer {
	t := &Tokenizer{
		vocab: vocab,
		log:   slog.Default(),
		oov:   OOVDrop,
	}
	for _, fn := range opts {
		fn(t)
	}
	return t
}

// LoadTokenizer loads the vocabulary at path and returns a Tokenizer over
// it. vocabSize must be supplied by the caller; the file does not record it.
func LoadTokenizer(path string, vocabSize int, opts ...Option) (*Tokenizer, error) {
	t := New(nil, opts...)

	vocab, err := LoadFile(path, vocabSize, WithLoadLogger(t.log))
	if err != nil {
		return nil, err
	}

	t.vocab = vocab
	return t, nil
}

// Vocab returns the tokenizer's vocabulary.
func (t *Tokenizer) Vocab() *Vocabulary {
	return t.vocab
}

// Encode tokenizes text and returns the resulting token sequence. It never
// fails: runes without a single-rune vocabulary entry are handled per the
// configured OOVPolicy (dropped by default, with a diagnostic).
func (t *Tokenizer) Encode(text string) Sequence {
	seq, _ := t.encode(text, false)
	return seq
}

// EncodeStrict is Encode with unknown runes treated as fatal: it returns
// an error naming the first rune that has no vocabulary entry.
func (t *Tokenizer) EncodeStrict(text string) (Sequence, error) {
	return t.encode(text, true)
}

func (t *Tokenizer) encode(text string, strict bool) (Sequence, error) {
	ids := make([]Token, 0, len(text))

	// Seed pass: one token per rune.
	for _, r := range text {
		id, _, ok := t.vocab.lookup(string(r))
		if ok {
			ids = append(ids, id)
			continue
		}

		switch {
		case strict:
			return Sequence{}, fmt.Errorf("rune %q has no vocabulary entry", r)
		case t.oov == OOVSubstitute:
			ids = append(ids, t.placeholder)
		default:
			t.log.Warn("dropping rune absent from vocabulary",
				slog.String("rune", string(r)),
			)
		}
	}

	return Sequence{ids: t.merge(ids), vocab: t.vocab}, nil
}

// merge runs the greedy pair-merge loop. Each pass scans all adjacent
// pairs left to right and merges the single pair whose concatenated
// content names the highest-scoring vocabulary entry; ties go to the
// leftmost pair via the strict greater-than comparison. The loop ends on
// the first pass that finds no mergeable pair. Every merge shortens the
// list by one, so at most len(ids)-1 merges occur.
func (t *Tokenizer) merge(ids []Token) []Token {
	for {
		bestScore := float32(-math.MaxFloat32)
		bestIdx := -1
		var bestID Token

		for i := 0; i+1 < len(ids); i++ {
			candidate := t.vocab.Entry(ids[i]) + t.vocab.Entry(ids[i+1])
			id, score, ok := t.vocab.lookup(candidate)
			if ok && score > bestScore {
				bestScore = score
				bestIdx = i
				bestID = id
			}
		}

		if bestIdx < 0 {
			return ids
		}

		// Merges change adjacency, so the next pass rescans from scratch.
		ids[bestIdx] = bestID
		ids = append(ids[:bestIdx+1], ids[bestIdx+2:]...)
	}
}
