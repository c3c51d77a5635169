package main

import (
	"fmt"

	"github.com/example/go-bpetok/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newVocabCmd() *cobra.Command {
	var (
		show   int
		lookup string
	)

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Inspect the vocabulary file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			v, err := tokenizer.LoadFile(cfg.Vocab.Path, cfg.Vocab.Size)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "entries:       %d\n", v.Len())
			fmt.Fprintf(out, "max entry len: %d\n", v.MaxEntryLen())

			if lookup != "" {
				tok := tokenizer.New(v)
				seq, err := tok.EncodeStrict(lookup)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%q encodes to %v\n", lookup, seq.Tokens())
			}

			if show > v.Len() {
				show = v.Len()
			}
			for i := 0; i < show; i++ {
				id := tokenizer.Token(i)
				fmt.Fprintf(out, "%6d  %9.3f  %q\n", id, v.Score(id), v.Entry(id))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&show, "show", 0, "Print the first N entries with their scores")
	cmd.Flags().StringVar(&lookup, "lookup", "", "Encode a probe string against the vocabulary")

	return cmd
}
