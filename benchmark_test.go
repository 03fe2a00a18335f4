package gotdoc_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ZaguanLabs/gotdoc"
	"github.com/ZaguanLabs/gotdoc/cache"
	"github.com/ZaguanLabs/gotdoc/provider"
	"github.com/ZaguanLabs/gotdoc/tokenizer"
)

// Benchmarks for performance validation

func benchParagraphs(n int) []string {
	paragraphs := make([]string, n)
	for i := range paragraphs {
		paragraphs[i] = strings.Repeat("The quick brown fox jumps over the lazy dog. ", 1+i%5)
	}
	return paragraphs
}

func BenchmarkHashText(b *testing.B) {
	text := "Hello World, this is a sample text for hashing"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gotdoc.HashText(text)
	}
}

func BenchmarkChunkCacheKey(b *testing.B) {
	req := gotdoc.TranslateRequest{
		Text:       strings.Join(benchParagraphs(10), "\n"),
		SourceLang: "English",
		TargetLang: "Hungarian",
		Previous:   gotdoc.ChunkContext{Source: "Hello", Translation: "Szia"},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gotdoc.ChunkCacheKey(req, "gpt-4")
	}
}

func BenchmarkSplitChunks_Estimate(b *testing.B) {
	paragraphs := benchParagraphs(500)
	tok := tokenizer.NewEstimator(0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gotdoc.SplitChunks(paragraphs, 2048, tok); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildPrompt(b *testing.B) {
	req := gotdoc.TranslateRequest{
		Text:       strings.Join(benchParagraphs(20), "\n"),
		SourceLang: "English",
		TargetLang: "Hungarian",
		Previous: gotdoc.ChunkContext{
			Source:      strings.Join(benchParagraphs(20), "\n"),
			Translation: strings.Join(benchParagraphs(20), "\n"),
		},
		Sample: "Szia Világ",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gotdoc.BuildPrompt(req)
	}
}

func BenchmarkInMemoryCache_Get(b *testing.B) {
	ctx := context.Background()
	c := cache.NewInMemoryCache(0)
	_ = c.Set(ctx, "test-key", "test-value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, "test-key")
	}
}

func BenchmarkTranslator_Translate_Cached(b *testing.B) {
	p := provider.NewMockProvider()
	c := cache.NewInMemoryCache(0)
	translator := gotdoc.NewTranslator("English", "Hungarian", p,
		gotdoc.WithCache(c),
		gotdoc.WithMaxTokens(256),
	)
	doc := gotdoc.NewDocument(benchParagraphs(100))

	// Prime the cache
	if _, err := translator.Translate(context.Background(), doc); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		translator.Translate(context.Background(), doc)
	}
}

func BenchmarkTranslator_Translate_Uncached(b *testing.B) {
	doc := gotdoc.NewDocument(benchParagraphs(100))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		translator := gotdoc.NewTranslator("English", "Hungarian", provider.NewMockProvider(),
			gotdoc.WithMaxTokens(256),
		)
		translator.Translate(context.Background(), doc)
	}
}

func BenchmarkGetDirection(b *testing.B) {
	langs := []string{"en_US", "es_ES", "ar_SA", "Hebrew", "Hungarian"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gotdoc.GetDirection(langs[i%len(langs)])
	}
}

func BenchmarkLanguageName(b *testing.B) {
	langs := []string{"en_US", "es_ES", "ar_SA", "ja_JP", "hu"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gotdoc.LanguageName(langs[i%len(langs)])
	}
}
