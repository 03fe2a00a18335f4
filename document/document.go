// Package document reads and writes the container formats gotdoc translates.
// Every format maps a file to an ordered list of paragraph strings and back.
package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZaguanLabs/gotdoc"
	"github.com/spf13/afero"
)

// Format is an alias to the main package interface.
type Format = gotdoc.DocumentFormat

// Registry picks a Format by file extension and does the file I/O.
type Registry struct {
	fs      afero.Fs
	formats []Format
	byExt   map[string]Format
}

// NewRegistry creates a registry over the OS filesystem.
func NewRegistry(formats ...Format) *Registry {
	r := &Registry{
		fs:    afero.NewOsFs(),
		byExt: make(map[string]Format),
	}
	for _, f := range formats {
		r.Register(f)
	}
	return r
}

// DefaultRegistry knows .docx, .txt and .html/.htm.
func DefaultRegistry() *Registry {
	return NewRegistry(NewDOCXFormat(), NewTextFormat(), NewHTMLFormat())
}

// WithFs replaces the filesystem, typically with afero.NewMemMapFs in tests.
func (r *Registry) WithFs(fs afero.Fs) *Registry {
	r.fs = fs
	return r
}

// Fs returns the filesystem the registry reads and writes.
func (r *Registry) Fs() afero.Fs {
	return r.fs
}

// Register adds f, replacing any format that claimed the same extensions.
func (r *Registry) Register(f Format) {
	r.formats = append(r.formats, f)
	for _, ext := range f.Extensions() {
		r.byExt[strings.ToLower(ext)] = f
	}
}

// Formats returns the registered formats in registration order.
func (r *Registry) Formats() []Format {
	return r.formats
}

// ForPath returns the format for path's extension.
func (r *Registry) ForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := r.byExt[ext]; ok {
		return f, nil
	}
	return nil, &gotdoc.DocumentError{
		Path:    path,
		Message: fmt.Sprintf("unsupported file extension %q (supported: %s)", ext, strings.Join(r.extensions(), ", ")),
	}
}

func (r *Registry) extensions() []string {
	var exts []string
	for _, f := range r.formats {
		exts = append(exts, f.Extensions()...)
	}
	return exts
}

// ReadFile loads the paragraphs of the document at path.
func (r *Registry) ReadFile(path string) (*gotdoc.Document, error) {
	format, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := r.fs.Open(path)
	if err != nil {
		return nil, &gotdoc.DocumentError{Path: path, Format: format.Name(), Message: "cannot open document", Cause: err}
	}
	defer f.Close()

	doc, err := format.Read(f)
	if err != nil {
		return nil, withPath(err, path, format.Name())
	}
	return doc, nil
}

// WriteFile writes doc to path. The document is written to a temporary file
// in the same directory and renamed into place, so path is either the
// complete new document or untouched.
func (r *Registry) WriteFile(path string, doc *gotdoc.Document) (err error) {
	format, err := r.ForPath(path)
	if err != nil {
		return err
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(r.fs, dir, "."+base+".*.tmp")
	if err != nil {
		return &gotdoc.DocumentError{Path: path, Format: format.Name(), Message: "cannot create temporary file", Cause: err}
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = r.fs.Remove(tmpName)
		}
	}()

	if err = format.Write(tmp, doc); err != nil {
		return withPath(err, path, format.Name())
	}
	if err = tmp.Sync(); err != nil {
		return &gotdoc.DocumentError{Path: path, Format: format.Name(), Message: "cannot flush document", Cause: err}
	}
	if err = tmp.Close(); err != nil {
		return &gotdoc.DocumentError{Path: path, Format: format.Name(), Message: "cannot close document", Cause: err}
	}
	if err = r.fs.Chmod(tmpName, 0o644); err != nil {
		return &gotdoc.DocumentError{Path: path, Format: format.Name(), Message: "cannot set permissions", Cause: err}
	}
	if err = r.fs.Rename(tmpName, path); err != nil {
		return &gotdoc.DocumentError{Path: path, Format: format.Name(), Message: "cannot move document into place", Cause: err}
	}
	return nil
}

// withPath fills in the path of a DocumentError returned by a Format.
func withPath(err error, path, format string) error {
	if docErr, ok := err.(*gotdoc.DocumentError); ok {
		cp := *docErr
		if cp.Path == "" {
			cp.Path = path
		}
		if cp.Format == "" {
			cp.Format = format
		}
		return &cp
	}
	return &gotdoc.DocumentError{Path: path, Format: format, Message: "failed", Cause: err}
}
