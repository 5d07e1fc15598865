// Package textsrc loads study text from files and readers.
package textsrc

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	apperrors "github.com/verte-zerg/memospeak/internal/errors"
)

// MaxSize is the largest text accepted, in bytes.
const MaxSize = 1 << 20

var allowedExts = map[string]struct{}{
	".txt":  {},
	".text": {},
}

// CheckExt rejects paths that do not name a plain-text file.
func CheckExt(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := allowedExts[ext]; !ok {
		return apperrors.FileTypeRejectedf("%s: only .txt files are supported", filepath.Base(path))
	}
	return nil
}

// LoadFile reads a plain-text file. Non-text extensions are rejected before
// the file is opened.
func LoadFile(path string) (string, error) {
	if err := CheckExt(path); err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", apperrors.FileReadFailure("open "+filepath.Base(path), err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only text file.
			_ = cerr
		}
	}()
	return Read(file, filepath.Base(path))
}

// Read reads text from r. name is used in error messages only.
func Read(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", apperrors.FileReadFailure("read "+name, err)
	}
	if len(data) > MaxSize {
		return "", apperrors.FileReadFailure(name+" is larger than 1 MiB", nil)
	}
	if !utf8.Valid(data) {
		return "", apperrors.FileReadFailure(name+" is not valid UTF-8 text", nil)
	}
	return Normalize(string(data)), nil
}

// Normalize converts line endings to "\n" and drops a leading byte order mark.
func Normalize(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
