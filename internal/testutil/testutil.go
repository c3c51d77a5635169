// Package testutil provides shared vocabulary fixtures for tests.
//
// The binary vocabulary format has no self-describing header beyond the
// advisory maximum entry length, so tests build small synthetic files
// instead of committing opaque binary fixtures:
//
//	path := testutil.WriteVocabFile(t, 2,
//	    testutil.Entry{Score: 1.5, Content: "a"},
//	    testutil.Entry{Score: 2.5, Content: "b"},
//	)
package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Entry is one vocabulary entry to serialize.
type Entry struct {
	Score   float32
	Content string
}

// EncodeVocab serializes a vocabulary in the binary on-disk layout:
// little-endian int32 maxEntryLen, then per entry a little-endian float32
// score, int32 byte length, and the raw content bytes.
func EncodeVocab(maxEntryLen int32, entries ...Entry) []byte {
	var buf bytes.Buffer

	write := func(v any) {
		// Writing to a bytes.Buffer cannot fail.
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	write(maxEntryLen)
	for _, e := range entries {
		write(e.Score)
		write(int32(len(e.Content)))
		buf.WriteString(e.Content)
	}

	return buf.Bytes()
}

// WriteVocabFile writes a synthetic vocabulary file into a test temp dir
// and returns its path.
func WriteVocabFile(tb testing.TB, maxEntryLen int32, entries ...Entry) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "vocab.bin")
	if err := os.WriteFile(path, EncodeVocab(maxEntryLen, entries...), 0o644); err != nil {
		tb.Fatalf("write vocab fixture: %v", err)
	}

	return path
}

// LetterVocab returns entries covering the lowercase ASCII letters plus a
// space, each with score 0. Tests append higher-scoring merge entries on
// top of this base to drive specific merge behavior.
func LetterVocab() []Entry {
	entries := make([]Entry, 0, 27)
	for c := 'a'; c <= 'z'; c++ {
		entries = append(entries, Entry{Content: string(c)})
	}
	entries = append(entries, Entry{Content: " "})
	return entries
}
