package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/go-bpetok/internal/codec"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [token ids]",
		Short: "Decode token ids back into text",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			ids, err := readTokenIDs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			svc, err := codec.FromConfig(cfg, nil)
			if err != nil {
				return err
			}

			decoded, err := svc.Decode(cmd.Context(), ids)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), decoded)
			return err
		},
	}

	return cmd
}

// readTokenIDs parses whitespace-separated token ids from the positional
// arguments, or from stdin when no arguments are given.
func readTokenIDs(args []string, stdin io.Reader) ([]uint32, error) {
	fields := args
	if len(fields) == 0 {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		fields = strings.Fields(string(content))
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("no token ids given (pass as arguments or on stdin)")
	}

	ids := make([]uint32, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid token id %q: %w", f, err)
		}
		ids = append(ids, uint32(n))
	}

	return ids, nil
}
