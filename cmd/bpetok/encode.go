package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/go-bpetok/internal/codec"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var (
		textFlag string
		file     string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Encode text into token ids",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if format != "ids" && format != "json" {
				return fmt.Errorf("--format must be 'ids' or 'json'")
			}

			input, err := readInputText(textFlag, file, args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			svc, err := codec.FromConfig(cfg, nil)
			if err != nil {
				return err
			}

			ids, err := svc.Encode(cmd.Context(), input)
			if err != nil {
				return err
			}

			return writeTokens(cmd.OutOrStdout(), ids, format)
		},
	}

	cmd.Flags().StringVar(&textFlag, "text", "", "Text to encode (use '-' to read from stdin)")
	cmd.Flags().StringVar(&file, "file", "", "Read text from file")
	cmd.Flags().StringVar(&format, "format", "ids", "Output format: ids|json")

	return cmd
}

// readInputText resolves the encode input from, in order of precedence,
// --file, --text ('-' selects stdin), then positional arguments.
func readInputText(textFlag, file string, args []string, stdin io.Reader) (string, error) {
	switch {
	case file != "":
		content, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(content), nil
	case textFlag == "-":
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(content), nil
	case textFlag != "":
		return textFlag, nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}

	return "", fmt.Errorf("text is required (use --text, --file, or provide as argument)")
}

func writeTokens(w io.Writer, ids []uint32, format string) error {
	if ids == nil {
		ids = []uint32{}
	}

	if format == "json" {
		payload := struct {
			Tokens []uint32 `json:"tokens"`
			Count  int      `json:"count"`
		}{Tokens: ids, Count: len(ids)}

		enc := json.NewEncoder(w)
		return enc.Encode(payload)
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}

	_, err := fmt.Fprintln(w, strings.Join(parts, " "))
	return err
}
