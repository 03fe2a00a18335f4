package gotdoc

import (
	"errors"
	"testing"
)

func TestTranslationError(t *testing.T) {
	cause := errors.New("underlying error")
	err := &TranslationError{Message: "translation failed", Cause: cause}

	if err.Error() != "translation failed: underlying error" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}

	// Without cause
	err2 := &TranslationError{Message: "simple error"}
	if err2.Error() != "simple error" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestProviderError(t *testing.T) {
	err := &ProviderError{Message: "rate limited", Retryable: true}

	if err.Error() != "provider error: rate limited" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if !err.Retryable {
		t.Error("error should be retryable")
	}
}

func TestProviderError_WrapsCountMismatch(t *testing.T) {
	err := error(&ProviderError{
		Message:   "malformed translation",
		Cause:     &CountMismatchError{Expected: 3, Got: 2},
		Retryable: true,
	})

	var mismatch *CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatal("errors.As should find the CountMismatchError")
	}
	if mismatch.Expected != 3 || mismatch.Got != 2 {
		t.Errorf("unexpected mismatch: %+v", mismatch)
	}
}

func TestCacheError(t *testing.T) {
	err := &CacheError{Message: "connection failed"}

	if err.Error() != "cache error: connection failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestDocumentError(t *testing.T) {
	tests := []struct {
		name string
		err  *DocumentError
		want string
	}{
		{
			name: "format and path",
			err:  &DocumentError{Path: "in.docx", Format: "docx", Message: "missing word/document.xml"},
			want: "document error (docx) in.docx: missing word/document.xml",
		},
		{
			name: "with cause",
			err:  &DocumentError{Path: "in.txt", Message: "open failed", Cause: errors.New("no such file")},
			want: "document error in.txt: open failed: no such file",
		},
		{
			name: "bare",
			err:  &DocumentError{Message: "unsupported format"},
			want: "document error: unsupported format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Key: "openai_api_key", Message: "is required"}

	if err.Error() != "config error (openai_api_key): is required" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestCountMismatchError(t *testing.T) {
	err := &CountMismatchError{Expected: 5, Got: 3}

	expected := "paragraph count mismatch: expected 5, got 3"
	if err.Error() != expected {
		t.Errorf("unexpected error message: %s, want %s", err.Error(), expected)
	}
}
