// Package validation checks user-supplied paths and snapshot contents
// before they reach the loaders: path sanity, content type detection from
// magic bytes, and size limits against resource exhaustion.
package validation

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Security limits to prevent DoS attacks (CWE-400).
const (
	// MaxSnapshotSize is the maximum decoded snapshot size (256 MB).
	MaxSnapshotSize = 256 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrExtension        = errors.New("unsupported snapshot extension")
	ErrTooLarge         = errors.New("content exceeds size limit")
	ErrFileType         = errors.New("unexpected file type")
)

// ValidatePath checks a path for dangerous patterns, length limits, and
// invalid characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// ValidateSnapshotPath is ValidatePath plus a check that path ends in
// .json or .json.xz.
func ValidateSnapshotPath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".json") && !strings.HasSuffix(lower, ".json.xz") {
		return fmt.Errorf("%w: %s (want .json or .json.xz)", ErrExtension, path)
	}
	return nil
}

// FileType is a content type recognized from magic bytes.
type FileType string

const (
	FileTypeXZ      FileType = "xz"
	FileTypeSQLite  FileType = "sqlite"
	FileTypeJSON    FileType = "json"
	FileTypeUnknown FileType = "unknown"
)

// magicBytes defines magic byte signatures for file type detection.
var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeSQLite, []byte("SQLite format 3")},
}

// headerSize is enough for every signature and leading JSON whitespace.
const headerSize = 512

// DetectFileType peeks at the start of r and returns its content type
// together with a reader that still yields the whole content.
func DetectFileType(r io.Reader) (FileType, io.Reader, error) {
	br := bufio.NewReaderSize(r, headerSize)
	buf, err := br.Peek(headerSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return FileTypeUnknown, br, fmt.Errorf("failed to read file header: %w", err)
	}
	return detectFileTypeFromMagic(buf), br, nil
}

func detectFileTypeFromMagic(buf []byte) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.fileType
		}
	}
	trimmed := bytes.TrimLeft(buf, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FileTypeJSON
	}
	return FileTypeUnknown
}

// LimitReader returns a reader that fails with ErrTooLarge once more than
// n bytes have been read from r.
func LimitReader(r io.Reader, n int64) io.Reader {
	return &limitReader{r: r, remaining: n}
}

type limitReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrTooLarge
	}
	return n, err
}
