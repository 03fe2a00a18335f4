package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ZaguanLabs/gotdoc"
	"github.com/ZaguanLabs/gotdoc/cache"
	"github.com/ZaguanLabs/gotdoc/config"
	"github.com/ZaguanLabs/gotdoc/pipeline"
	"github.com/ZaguanLabs/gotdoc/provider"
	"github.com/ZaguanLabs/gotdoc/tokenizer"
)

// modelBindings maps config keys to the flags shared by translate and chunks.
var modelBindings = map[string]string{
	"model":      "model",
	"tokenizer":  "tokenizer",
	"max_tokens": "max-tokens",
}

// translateBindings maps config keys to translate flags.
var translateBindings = map[string]string{
	"openai_api_key":      "api-key",
	"model":               "model",
	"base_url":            "base-url",
	"tokenizer":           "tokenizer",
	"max_tokens":          "max-tokens",
	"style":               "style",
	"instructions":        "instructions",
	"requests_per_minute": "rpm",
	"timeout":             "timeout",
	"cache.backend":       "cache",
	"cache.ttl":           "cache-ttl",
	"cache.redis_url":     "redis-url",
	"cache.sqlite_path":   "cache-db",
}

type translateFlags struct {
	input      string
	output     string
	sample     string
	sourceLang string
	targetLang string
	jsonOutput bool
}

// summary is the --json output of translate.
type summary struct {
	Input            string `json:"input"`
	Output           string `json:"output"`
	SourceLang       string `json:"source_lang"`
	TargetLang       string `json:"target_lang"`
	RunID            string `json:"run_id"`
	Paragraphs       int    `json:"paragraphs"`
	Chunks           int    `json:"chunks"`
	TranslatedChunks int    `json:"translated_chunks"`
	CachedChunks     int    `json:"cached_chunks"`
	OutputBytes      int64  `json:"output_bytes"`
	ElapsedMs        int64  `json:"elapsed_ms"`
}

func newTranslateCmd(g *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	f := &translateFlags{}

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a document",
		Example: `  gotdoc translate -i report.docx -o report.hu.docx -t Hungarian
  gotdoc translate -i notes.txt -o notes.de.txt -s English -t German --sample glossary.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := loadConfig(cmd, g, translateBindings)
			if err != nil {
				return err
			}
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}
			logger := newLogger(stderr, cfg.LogFormat, g.verbose, g.quiet)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			tc, err := cache.Open(ctx, cfg.CacheOptions())
			if err != nil {
				return err
			}
			if closer, ok := tc.(io.Closer); ok {
				defer multierr.AppendInvoke(&err, multierr.Close(closer))
			}

			tok := newTokenizer(cfg, logger)

			providerCfg := cfg.ProviderOptions()
			providerCfg.Tokenizer = tok
			providerCfg.Logger = logger

			var p gotdoc.AIProvider = provider.NewOpenAIProvider(providerCfg)
			if cfg.RequestsPerMinute > 0 {
				p = gotdoc.NewRateLimitedProvider(p, gotdoc.RateLimitConfig{RequestsPerMinute: cfg.RequestsPerMinute})
			}

			retry := cfg.RetryPolicy()
			req := pipeline.Request{
				InputPath:  f.input,
				OutputPath: f.output,
				SamplePath: f.sample,
				SourceLang: f.sourceLang,
				TargetLang: f.targetLang,
				MaxTokens:  cfg.MaxTokens,
			}

			result, err := pipeline.Run(ctx, req, pipeline.Options{
				Provider:       p,
				Tokenizer:      tok,
				Cache:          tc,
				CacheNamespace: cfg.Model,
				Retry:          &retry,
				Style:          cfg.TranslationStyle(),
				Instructions:   cfg.Instructions,
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			if f.jsonOutput {
				return writeSummaryJSON(stdout, req, result)
			}
			if !g.quiet {
				writeSummary(stderr, req, result)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "input document (.docx, .txt, .html)")
	fl.StringVarP(&f.output, "output", "o", "", "output document; the format follows its extension")
	fl.StringVar(&f.sample, "sample", "", "sample translation included in every prompt")
	fl.StringVarP(&f.sourceLang, "source", "s", "English", "source language")
	fl.StringVarP(&f.targetLang, "target", "t", "", "target language")
	fl.BoolVar(&f.jsonOutput, "json", false, "print the run summary as JSON")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	_ = cmd.MarkFlagRequired("target")

	addModelFlags(cmd)
	fl.String("api-key", "", "OpenAI API key (default: OPENAI_API_KEY env)")
	fl.String("base-url", "", "base URL of an OpenAI-compatible API")
	fl.Duration("timeout", provider.DefaultTimeout, "HTTP timeout per request")
	fl.String("style", string(gotdoc.StyleFormal), "translation style: formal, neutral, literary or technical")
	fl.String("instructions", "", "extra instructions for the system prompt")
	fl.Int("rpm", 0, "maximum requests per minute (0 = unlimited)")
	fl.String("cache", cache.BackendNone, "chunk cache: none, redis or sqlite")
	fl.Duration("cache-ttl", 0, "chunk cache entry lifetime (0 = forever)")
	fl.String("redis-url", "", "redis URL for the redis cache")
	fl.String("cache-db", "", "database file for the sqlite cache")

	return cmd
}

// addModelFlags adds the flags that decide how a document is chunked.
func addModelFlags(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.String("model", provider.DefaultModel, "model name")
	fl.String("tokenizer", tokenizer.KindTiktoken, "token counter: tiktoken or estimate")
	fl.Int("max-tokens", gotdoc.DefaultMaxTokens, "token ceiling per chunk")
}

// newTokenizer builds the configured tokenizer, falling back to the
// character estimate when the tiktoken encoding cannot be loaded.
func newTokenizer(cfg *config.Config, logger *slog.Logger) gotdoc.Tokenizer {
	tok, err := tokenizer.New(cfg.Tokenizer, cfg.Model)
	if err != nil {
		logger.Warn("tokenizer unavailable, estimating tokens from characters", "tokenizer", cfg.Tokenizer, "error", err)
		return tokenizer.NewEstimator(0)
	}
	return tok
}

func writeSummary(w io.Writer, req pipeline.Request, result *pipeline.Result) {
	fmt.Fprintf(w, "\nTranslated %s -> %s (%s to %s) in %v\n",
		req.InputPath, req.OutputPath, req.SourceLang, req.TargetLang, result.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  Paragraphs:   %s\n", humanize.Comma(int64(result.Paragraphs)))
	fmt.Fprintf(w, "  Chunks:       %d\n", result.Chunks)
	fmt.Fprintf(w, "  From cache:   %d\n", result.CachedChunks)
	fmt.Fprintf(w, "  Output size:  %s\n", humanize.Bytes(uint64(result.OutputBytes)))
}

func writeSummaryJSON(w io.Writer, req pipeline.Request, result *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary{
		Input:            req.InputPath,
		Output:           req.OutputPath,
		SourceLang:       req.SourceLang,
		TargetLang:       req.TargetLang,
		RunID:            result.RunID,
		Paragraphs:       result.Paragraphs,
		Chunks:           result.Chunks,
		TranslatedChunks: result.TranslatedChunks,
		CachedChunks:     result.CachedChunks,
		OutputBytes:      result.OutputBytes,
		ElapsedMs:        result.Elapsed.Milliseconds(),
	})
}
