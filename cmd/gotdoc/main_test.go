package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/ZaguanLabs/gotdoc"
)

// isolate keeps the developer's API key and config files out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOTDOC_OPENAI_API_KEY", "")
}

// fakeCompletions answers chat completions by prefixing every line of the
// text to translate with "HU: ". It fails the first failFirst calls with
// status.
func fakeCompletions(t *testing.T, failFirst int32, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if n <= failFirst {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":{"message":"upstream unavailable","type":"server_error"}}`)
			return
		}

		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		user := req.Messages[len(req.Messages)-1].Content
		text := user[strings.LastIndex(user, "Text to translate:\n\n")+len("Text to translate:\n\n"):]

		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = "HU: " + line
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4",`+
			`"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`,
			strings.Join(lines, "\n"))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"version"}, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "gotdoc "+gotdoc.Version) {
		t.Errorf("expected version output, got: %s", stdout.String())
	}
}

func TestRun_MissingRequiredFlags(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate"}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for missing flags")
	}
	if !strings.Contains(err.Error(), "required flag") {
		t.Errorf("expected required flag error, got: %v", err)
	}
}

func TestRun_MissingAPIKey(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate",
		"-i", filepath.Join(dir, "missing.docx"),
		"-o", filepath.Join(dir, "out.docx"),
		"-t", "Hungarian",
	}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for missing API key")
	}

	var cfgErr *gotdoc.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("error should name OPENAI_API_KEY, got: %v", err)
	}
}

func TestRun_TranslateRejectsMemoryCache(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate",
		"-i", filepath.Join(dir, "in.txt"),
		"-o", filepath.Join(dir, "out.txt"),
		"-t", "Hungarian",
		"--api-key", "test-key",
		"--cache", "memory",
	}, &stdout, &stderr)

	var cfgErr *gotdoc.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
	if cfgErr.Key != "cache.backend" {
		t.Errorf("Key = %q, want cache.backend", cfgErr.Key)
	}
}

func TestRun_Translate(t *testing.T) {
	isolate(t)
	srv, calls := fakeCompletions(t, 0, 0)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	writeFile(t, in, "Hello\n\nWorld\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate",
		"-i", in, "-o", out, "-t", "Hungarian",
		"--api-key", "test-key",
		"--base-url", srv.URL + "/v1",
		"--tokenizer", "estimate",
		"--json",
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("translate failed: %v\nstderr: %s", err, stderr.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "HU: Hello\n\nHU: World\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if calls.Load() != 1 {
		t.Errorf("API calls = %d, want 1", calls.Load())
	}

	var s summary
	if err := json.Unmarshal(stdout.Bytes(), &s); err != nil {
		t.Fatalf("invalid JSON summary: %v\n%s", err, stdout.String())
	}
	if s.Paragraphs != 3 || s.Chunks != 1 || s.TranslatedChunks != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.OutputBytes != int64(len(data)) {
		t.Errorf("OutputBytes = %d, want %d", s.OutputBytes, len(data))
	}

	// Logs go to stderr as JSON when it is not a terminal.
	if !strings.Contains(stderr.String(), `"msg":"translating chunk"`) {
		t.Errorf("expected JSON progress log, got: %s", stderr.String())
	}
}

func TestRun_TranslateSummary(t *testing.T) {
	isolate(t)
	srv, _ := fakeCompletions(t, 0, 0)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	writeFile(t, in, "Hello\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate",
		"-i", in, "-o", filepath.Join(dir, "out.docx"), "-t", "Hungarian",
		"--api-key", "test-key",
		"--base-url", srv.URL + "/v1",
		"--tokenizer", "estimate",
		"--log-format", "text",
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	for _, want := range []string{"Paragraphs:   1", "Chunks:       1", "Output size:", "level=INFO"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr.String())
		}
	}
}

func TestRun_TranslateRetriesThenFails(t *testing.T) {
	isolate(t)
	srv, calls := fakeCompletions(t, 100, http.StatusServiceUnavailable)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	cfgPath := filepath.Join(dir, "config.json")
	writeFile(t, in, "Hello\n")
	writeFile(t, cfgPath, `{"OPENAI_API_KEY": "test-key", "retry": {"base_delay": "1ms", "max_delay": "2ms"}}`)

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate",
		"--config", cfgPath,
		"-i", in, "-o", out, "-t", "Hungarian",
		"--base-url", srv.URL + "/v1",
		"--tokenizer", "estimate",
		"--quiet",
	}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	var transErr *gotdoc.TranslationError
	if !errors.As(err, &transErr) {
		t.Errorf("expected TranslationError, got %T: %v", err, err)
	}
	if calls.Load() != 5 {
		t.Errorf("API calls = %d, want 5", calls.Load())
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("output file must not exist after a failed run")
	}
}

func TestRun_TranslateRecoversFromTransientError(t *testing.T) {
	isolate(t)
	srv, calls := fakeCompletions(t, 1, http.StatusTooManyRequests)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, in, "Hello\n")
	writeFile(t, cfgPath, "retry:\n  base_delay: 1ms\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate",
		"--config", cfgPath,
		"-i", in, "-o", out, "-t", "Hungarian",
		"--api-key", "test-key",
		"--base-url", srv.URL + "/v1",
		"--tokenizer", "estimate",
		"--quiet",
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}

	if calls.Load() != 2 {
		t.Errorf("API calls = %d, want 2", calls.Load())
	}
	data, _ := os.ReadFile(out)
	if string(data) != "HU: Hello\n" {
		t.Errorf("output = %q", data)
	}
}

func TestRun_Chunks(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	writeFile(t, in, "Hello\nWorld\nHello World\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{"chunks", "-i", in, "--tokenizer", "estimate", "--max-tokens", "2"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("chunks failed: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "3 paragraphs in 3 chunks") {
		t.Errorf("expected chunk summary, got: %s", output)
	}
	if !strings.Contains(output, `"Hello World"`) {
		t.Errorf("expected paragraph preview, got: %s", output)
	}
	if !strings.Contains(output, "(oversized)") {
		t.Errorf("expected oversized marker, got: %s", output)
	}
}

func TestRun_ChunksJSON(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	writeFile(t, in, "Hello\nWorld\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{"chunks", "-i", in, "--tokenizer", "estimate", "--json"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("chunks failed: %v", err)
	}

	var plan struct {
		Paragraphs int `json:"paragraphs"`
		Chunks     []struct {
			Paragraphs int    `json:"paragraphs"`
			Text       string `json:"text"`
		} `json:"chunks"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &plan); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if plan.Paragraphs != 2 || len(plan.Chunks) != 1 || plan.Chunks[0].Text != "Hello\nWorld" {
		t.Errorf("unexpected plan: %+v", plan)
	}
}

func TestRun_ChunksUnsupportedFormat(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.pdf")
	writeFile(t, in, "%PDF")

	var stdout, stderr bytes.Buffer
	err := run([]string{"chunks", "-i", in, "--tokenizer", "estimate"}, &stdout, &stderr)

	var docErr *gotdoc.DocumentError
	if !errors.As(err, &docErr) {
		t.Fatalf("expected DocumentError, got %T: %v", err, err)
	}
}

func TestRun_CacheExportImport(t *testing.T) {
	isolate(t)
	srv, calls := fakeCompletions(t, 0, 0)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	db := filepath.Join(dir, "tm.db")
	writeFile(t, in, "Hello\nWorld\n")

	translate := func(out, cacheDB string) {
		t.Helper()
		var stdout, stderr bytes.Buffer
		err := run([]string{"translate",
			"-i", in, "-o", out, "-t", "Hungarian",
			"--api-key", "test-key",
			"--base-url", srv.URL + "/v1",
			"--tokenizer", "estimate",
			"--cache", "sqlite", "--cache-db", cacheDB,
			"--quiet",
		}, &stdout, &stderr)
		if err != nil {
			t.Fatalf("translate failed: %v", err)
		}
	}

	translate(filepath.Join(dir, "out1.txt"), db)
	translate(filepath.Join(dir, "out2.txt"), db)
	if calls.Load() != 1 {
		t.Errorf("second run should be served from the cache, API calls = %d", calls.Load())
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"cache", "stats", "--cache-db", db}, &stdout, &stderr); err != nil {
		t.Fatalf("cache stats failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Entries:  1") {
		t.Errorf("unexpected stats: %s", stdout.String())
	}

	exportPath := filepath.Join(dir, "tm.json")
	stdout.Reset()
	if err := run([]string{"cache", "export", exportPath, "--cache-db", db}, &stdout, &stderr); err != nil {
		t.Fatalf("cache export failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Exported 1 entries") {
		t.Errorf("unexpected export output: %s", stdout.String())
	}

	other := filepath.Join(dir, "other.db")
	stdout.Reset()
	if err := run([]string{"cache", "import", exportPath, "--cache-db", other}, &stdout, &stderr); err != nil {
		t.Fatalf("cache import failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Imported 1 entries.") {
		t.Errorf("unexpected import output: %s", stdout.String())
	}

	translate(filepath.Join(dir, "out3.txt"), other)
	if calls.Load() != 1 {
		t.Errorf("imported entries should be reused, API calls = %d", calls.Load())
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		format  string
		verbose bool
		quiet   bool
		msg     string
		want    string
	}{
		{"json", false, false, "info", `"msg":"hello"`},
		{"text", false, false, "info", "msg=hello"},
		{"auto", false, false, "info", `"msg":"hello"`},
		{"text", false, true, "info", ""},
		{"text", true, false, "debug", "level=DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.msg, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.format, tt.verbose, tt.quiet)
			if tt.msg == "debug" {
				logger.Debug("hello")
			} else {
				logger.Info("hello")
			}
			if tt.want == "" {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %s", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("árvíztűrő ", 10)
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "Hello", "Hello"},
		{"exact", strings.Repeat("é", 10), strings.Repeat("é", 10)},
		{"accented", long, string([]rune(long)[:7]) + "..."},
		{"cjk", strings.Repeat("漢字", 10), "漢字漢字漢字漢..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preview(tt.in, 10)
			if got != tt.want {
				t.Errorf("preview(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("preview(%q) is not valid UTF-8", tt.in)
			}
		})
	}
}
