package text

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "passthrough clean text",
			input: "hello world",
			want:  "hello world",
		},
		{
			name:  "trims surrounding whitespace",
			input: "  hello \t",
			want:  "hello",
		},
		{
			name:  "normalizes CRLF to LF",
			input: "line one\r\nline two",
			want:  "line one\nline two",
		},
		{
			name:  "normalizes bare CR to LF",
			input: "line one\rline two",
			want:  "line one\nline two",
		},
		{
			name:  "preserves internal whitespace",
			input: "hello   world",
			want:  "hello   world",
		},
		{
			name:    "rejects empty string",
			input:   "",
			wantErr: ErrEmptyText,
		},
		{
			name:    "rejects whitespace-only string",
			input:   " \t\n ",
			wantErr: ErrEmptyText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPrepare(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
		want  string
	}{
		{
			name:  "defaults match Normalize",
			input: "  hello   world  ",
			want:  "hello   world",
		},
		{
			name:  "collapse spaces",
			input: "hello \t  world",
			opts:  Options{CollapseSpaces: true},
			want:  "hello world",
		},
		{
			name:  "collapse leaves newlines alone",
			input: "a  b\nc",
			opts:  Options{CollapseSpaces: true},
			want:  "a b\nc",
		},
		{
			// U+0065 U+0301 (e + combining acute) composes to U+00E9.
			name:  "nfc composes decomposed runes",
			input: "cafe\u0301",
			opts:  Options{NFC: true},
			want:  "caf\u00e9",
		},
		{
			name:  "nfc leaves composed text unchanged",
			input: "caf\u00e9",
			opts:  Options{NFC: true},
			want:  "caf\u00e9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Prepare(tt.input, tt.opts)
			if err != nil {
				t.Fatalf("Prepare: %v", err)
			}

			if got != tt.want {
				t.Errorf("Prepare(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPrepare_EmptyInput(t *testing.T) {
	_, err := Prepare("   ", Options{CollapseSpaces: true})
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}
