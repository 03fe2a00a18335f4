package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/gotdoc/pipeline"
)

func newChunksCmd(g *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		input      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "chunks",
		Short: "Show how a document would be chunked, without calling the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g, modelBindings)
			if err != nil {
				return err
			}
			logger := newLogger(stderr, cfg.LogFormat, g.verbose, g.quiet)

			req := pipeline.Request{InputPath: input, MaxTokens: cfg.MaxTokens}
			chunks, doc, err := pipeline.Plan(req, pipeline.Options{Tokenizer: newTokenizer(cfg, logger)})
			if err != nil {
				return err
			}

			if jsonOutput {
				type chunkOutput struct {
					Paragraphs int    `json:"paragraphs"`
					Tokens     int    `json:"tokens"`
					Oversized  bool   `json:"oversized,omitempty"`
					Text       string `json:"text"`
				}
				type planOutput struct {
					InputFile  string        `json:"input_file"`
					MaxTokens  int           `json:"max_tokens"`
					Paragraphs int           `json:"paragraphs"`
					Chunks     []chunkOutput `json:"chunks"`
				}

				out := planOutput{InputFile: input, MaxTokens: cfg.MaxTokens, Paragraphs: doc.Len(), Chunks: []chunkOutput{}}
				for _, c := range chunks {
					out.Chunks = append(out.Chunks, chunkOutput{
						Paragraphs: len(c.Paragraphs),
						Tokens:     c.Tokens,
						Oversized:  c.Tokens > cfg.MaxTokens,
						Text:       c.Text(),
					})
				}

				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			total := 0
			for _, c := range chunks {
				total += c.Tokens
			}

			fmt.Fprintf(stdout, "Dry run: %s\n", input)
			fmt.Fprintf(stdout, "%s paragraphs in %d chunks, about %s tokens (ceiling %s per chunk)\n\n",
				humanize.Comma(int64(doc.Len())), len(chunks), humanize.Comma(int64(total)), humanize.Comma(int64(cfg.MaxTokens)))

			for i, c := range chunks {
				first := preview(c.Paragraphs[0], 60)
				marker := ""
				if c.Tokens > cfg.MaxTokens {
					marker = " (oversized)"
				}
				fmt.Fprintf(stdout, "%3d. %d paragraphs, %d tokens%s: %q\n", i+1, len(c.Paragraphs), c.Tokens, marker, first)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input document (.docx, .txt, .html)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the plan as JSON")
	_ = cmd.MarkFlagRequired("input")
	addModelFlags(cmd)

	return cmd
}

// preview shortens s to at most n runes, marking the cut with "...".
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
