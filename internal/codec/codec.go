// Package codec wires input preparation and the tokenizer into one
// encode/decode service consumed by the CLI and the HTTP server.
package codec

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/go-bpetok/internal/config"
	"github.com/example/go-bpetok/internal/text"
	"github.com/example/go-bpetok/internal/tokenizer"
)

// Service prepares text per the configured options and encodes it against
// one loaded vocabulary. Read-only after construction.
type Service struct {
	tok  *tokenizer.Tokenizer
	prep text.Options
}

// NewService builds a Service around an already-constructed tokenizer.
func NewService(tok *tokenizer.Tokenizer, prep text.Options) *Service {
	return &Service{tok: tok, prep: prep}
}

// FromConfig loads the configured vocabulary and returns a ready Service.
func FromConfig(cfg config.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tok, err := tokenizer.LoadTokenizer(cfg.Vocab.Path, cfg.Vocab.Size,
		tokenizer.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return NewService(tok, text.Options{
		NFC:            cfg.Encode.NFC,
		CollapseSpaces: cfg.Encode.CollapseSpaces,
	}), nil
}

// Tokenizer returns the underlying tokenizer.
func (s *Service) Tokenizer() *tokenizer.Tokenizer {
	return s.tok
}

// Encode prepares the input and encodes it. Runes without a vocabulary
// entry are dropped with a diagnostic, never reported as an error.
func (s *Service) Encode(_ context.Context, input string) ([]uint32, error) {
	prepared, err := text.Prepare(input, s.prep)
	if err != nil {
		return nil, err
	}

	return s.tok.Encode(prepared).Tokens(), nil
}

// Decode validates the ids against the vocabulary and reconstructs text.
// Wire input is untrusted, so the range check that is a programmer-error
// precondition inside the tokenizer is enforced as a real error here.
func (s *Service) Decode(_ context.Context, ids []uint32) (string, error) {
	size := s.tok.Vocab().Len()
	for i, id := range ids {
		if int(id) >= size {
			return "", fmt.Errorf("token %d at position %d out of range [0, %d)", id, i, size)
		}
	}

	return tokenizer.NewSequence(ids, s.tok.Vocab()).Decode(), nil
}

// DescribeVocab reports vocabulary metadata.
func (s *Service) DescribeVocab() (size, maxEntryLen int) {
	return s.tok.Vocab().Len(), s.tok.Vocab().MaxEntryLen()
}
