package tokenizer

import "strings"

// Sequence is an ordered list of token ids together with a non-owning
// reference to the Vocabulary that produced them. Sequences are cheap
// read-only views created per Encode call; the Vocabulary must outlive
// every Sequence derived from it.
type Sequence struct {
	ids   []Token
	vocab *Vocabulary
}

// NewSequence binds a list of token ids to a vocabulary. Every id must be
// a valid index into the vocabulary; violating that is a programmer error
// that surfaces as a panic on Decode.
func NewSequence(ids []Token, vocab *Vocabulary) Sequence {
	return Sequence{ids: append([]Token(nil), ids...), vocab: vocab}
}

// Len returns the number of tokens in the sequence.
func (s Sequence) Len() int {
	return len(s.ids)
}

// Tokens returns a copy of the token ids.
func (s Sequence) Tokens() []Token {
	return append([]Token(nil), s.ids...)
}

// Decode reconstructs text by concatenating the vocabulary content of
// each token in order. It is pure and never fails for a well-formed
// sequence. Because every merged token's content equals the concatenation
// of the contents it replaced, Decode returns the original input text
// whenever no rune was dropped during encoding.
func (s Sequence) Decode() string {
	var n int
	for _, id := range s.ids {
		n += len(s.vocab.Entry(id))
	}

	var b strings.Builder
	b.Grow(n)
	for _, id := range s.ids {
		b.WriteString(s.vocab.Entry(id))
	}

	return b.String()
}
