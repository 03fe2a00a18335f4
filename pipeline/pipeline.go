// Package pipeline runs a complete document translation: read the input,
// load the optional sample, translate chunk by chunk and write the output.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/ZaguanLabs/gotdoc"
	"github.com/ZaguanLabs/gotdoc/document"
)

// Request names the files and languages of one translation run.
type Request struct {
	InputPath  string
	OutputPath string
	SamplePath string // Optional sample translation in the same container format
	SourceLang string
	TargetLang string
	MaxTokens  int // Chunk token ceiling (default: gotdoc.DefaultMaxTokens)
}

// Options carries the collaborators of a run.
type Options struct {
	Provider       gotdoc.AIProvider       // Required
	Tokenizer      gotdoc.Tokenizer        // Optional, the 4-chars-per-token estimate otherwise
	Cache          gotdoc.TranslationCache // Optional chunk cache
	CacheNamespace string                  // Usually the model name
	Registry       *document.Registry      // Optional, document.DefaultRegistry otherwise
	Retry          *gotdoc.RetryConfig     // Optional, gotdoc.DefaultRetryConfig otherwise
	Style          gotdoc.TranslationStyle // Optional, formal otherwise
	Instructions   string                  // Extra system prompt instructions
	Logger         *slog.Logger            // Optional
}

// Result describes a finished run.
type Result struct {
	*gotdoc.ProcessedDocument
	RunID       string
	OutputPath  string
	OutputBytes int64
	Elapsed     time.Duration
}

// Validate reports every problem with the request at once.
func (r Request) Validate() error {
	var err error
	if r.InputPath == "" {
		err = multierr.Append(err, &gotdoc.ConfigError{Key: "input", Message: "input file is required"})
	}
	if r.OutputPath == "" {
		err = multierr.Append(err, &gotdoc.ConfigError{Key: "output", Message: "output file is required"})
	}
	if r.InputPath != "" && r.OutputPath != "" && samePath(r.InputPath, r.OutputPath) {
		err = multierr.Append(err, &gotdoc.ConfigError{Key: "output", Message: "input file and output file cannot be the same"})
	}
	if r.SourceLang == "" {
		err = multierr.Append(err, &gotdoc.ConfigError{Key: "source", Message: "source language is required"})
	}
	if r.TargetLang == "" {
		err = multierr.Append(err, &gotdoc.ConfigError{Key: "target", Message: "target language is required"})
	}
	if r.MaxTokens < 0 {
		err = multierr.Append(err, &gotdoc.ConfigError{Key: "max_tokens", Message: "must not be negative"})
	}
	return err
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// Run executes req. The output file is written only after every chunk has
// been translated; on error it is left as it was.
func Run(ctx context.Context, req Request, opts Options) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if opts.Provider == nil {
		return nil, &gotdoc.ConfigError{Key: "provider", Message: "no translation provider configured"}
	}

	registry := opts.Registry
	if registry == nil {
		registry = document.DefaultRegistry()
	}

	runID := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("run_id", runID)

	start := time.Now()

	// Resolve the output format up front so an unsupported extension fails
	// before any API call.
	if _, err := registry.ForPath(req.OutputPath); err != nil {
		return nil, err
	}

	doc, err := registry.ReadFile(req.InputPath)
	if err != nil {
		return nil, err
	}
	logger.Info("document loaded", "input", req.InputPath, "paragraphs", doc.Len())

	translatorOpts := []gotdoc.TranslatorOption{
		gotdoc.WithLogger(logger),
		gotdoc.WithCache(opts.Cache),
		gotdoc.WithCacheNamespace(opts.CacheNamespace),
		gotdoc.WithInstructions(opts.Instructions),
	}
	if req.MaxTokens > 0 {
		translatorOpts = append(translatorOpts, gotdoc.WithMaxTokens(req.MaxTokens))
	}
	if opts.Tokenizer != nil {
		translatorOpts = append(translatorOpts, gotdoc.WithTokenizer(opts.Tokenizer))
	}
	if opts.Retry != nil {
		translatorOpts = append(translatorOpts, gotdoc.WithRetryConfig(*opts.Retry))
	}
	if opts.Style != "" {
		translatorOpts = append(translatorOpts, gotdoc.WithStyle(opts.Style))
	}

	if req.SamplePath != "" {
		sample, err := registry.ReadFile(req.SamplePath)
		if err != nil {
			return nil, err
		}
		logger.Info("sample translation loaded", "sample", req.SamplePath, "paragraphs", sample.Len())
		translatorOpts = append(translatorOpts, gotdoc.WithSample(sample.Text()))
	}

	translator := gotdoc.NewTranslator(req.SourceLang, req.TargetLang, opts.Provider, translatorOpts...)

	processed, err := translator.Translate(ctx, doc)
	if err != nil {
		logger.Error("translation failed, output not written", "error", err)
		return nil, err
	}

	if err := registry.WriteFile(req.OutputPath, processed.Document); err != nil {
		return nil, err
	}

	result := &Result{
		ProcessedDocument: processed,
		RunID:             runID,
		OutputPath:        req.OutputPath,
		Elapsed:           time.Since(start),
	}
	if info, err := registry.Fs().Stat(req.OutputPath); err == nil {
		result.OutputBytes = info.Size()
	}

	logger.Info("document written",
		"output", req.OutputPath,
		"paragraphs", processed.Paragraphs,
		"chunks", processed.Chunks,
		"cached_chunks", processed.CachedChunks,
		"elapsed", result.Elapsed.Round(time.Millisecond))

	return result, nil
}

// Plan reads the input and returns the chunks it would be translated in,
// without calling any provider.
func Plan(req Request, opts Options) ([]gotdoc.Chunk, *gotdoc.Document, error) {
	if req.InputPath == "" {
		return nil, nil, &gotdoc.ConfigError{Key: "input", Message: "input file is required"}
	}

	registry := opts.Registry
	if registry == nil {
		registry = document.DefaultRegistry()
	}

	doc, err := registry.ReadFile(req.InputPath)
	if err != nil {
		return nil, nil, err
	}

	var translatorOpts []gotdoc.TranslatorOption
	if req.MaxTokens > 0 {
		translatorOpts = append(translatorOpts, gotdoc.WithMaxTokens(req.MaxTokens))
	}
	if opts.Tokenizer != nil {
		translatorOpts = append(translatorOpts, gotdoc.WithTokenizer(opts.Tokenizer))
	}

	chunks, err := gotdoc.NewTranslator(req.SourceLang, req.TargetLang, nil, translatorOpts...).Plan(doc)
	if err != nil {
		return nil, nil, err
	}
	return chunks, doc, nil
}
