// Package snapshot stores transcriptions as JSON documents, optionally
// xz-compressed, and computes their content hashes.
//
// A snapshot keeps everything the data model holds: metadata and ids,
// capabilities, media, controlled vocabularies, tiers with their
// annotations, and hierarchy links. Loading a snapshot rebuilds the
// transcription through the core API, so every invariant is checked again.
package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/annokit/core/ann"
	apperrors "github.com/FocuswithJustin/annokit/core/errors"
	"github.com/FocuswithJustin/annokit/internal/validation"
)

// Extension is the file extension of snapshots; CompressedExtension the
// one of xz-compressed snapshots.
const (
	Extension           = ".json"
	CompressedExtension = ".json.xz"
)

// Digest holds the content hashes of a snapshot.
type Digest struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// Marshal returns the compact JSON form of trs.
func Marshal(trs *ann.Transcription) ([]byte, error) {
	if trs == nil {
		return nil, apperrors.NewType("nil", "transcription")
	}
	data, err := json.Marshal(fromTranscription(trs))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Unmarshal rebuilds a transcription from its JSON form.
func Unmarshal(data []byte) (*ann.Transcription, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &apperrors.ParseError{Format: "snapshot", Message: err.Error(), Err: apperrors.ErrInvalidInput}
	}
	return doc.toTranscription()
}

// Encode writes the indented JSON form of trs to w.
func Encode(w io.Writer, trs *ann.Transcription) error {
	if trs == nil {
		return apperrors.NewType("nil", "transcription")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fromTranscription(trs))
}

// Decode reads a transcription from r.
func Decode(r io.Reader) (*ann.Transcription, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Unmarshal(data)
}

// Hash returns the content hashes of the compact JSON form of trs.
// Copies of a transcription have the same digest.
func Hash(trs *ann.Transcription) (Digest, error) {
	data, err := Marshal(trs)
	if err != nil {
		return Digest{}, err
	}
	return HashBytes(data), nil
}

// HashBytes returns the SHA-256 and BLAKE3 hashes of data.
func HashBytes(data []byte) Digest {
	s := sha256.Sum256(data)
	b := blake3.Sum256(data)
	return Digest{SHA256: hex.EncodeToString(s[:]), BLAKE3: hex.EncodeToString(b[:])}
}

// IsSnapshot reports whether path has a snapshot extension.
func IsSnapshot(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, Extension) || strings.HasSuffix(lower, CompressedExtension)
}

func compressed(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xz")
}

// Save writes trs to path, xz-compressed when path ends in ".xz". The
// file is written atomically.
func Save(path string, trs *ann.Transcription) error {
	if err := validation.ValidatePath(path); err != nil {
		return apperrors.NewIO("write", path, err)
	}
	var buf bytes.Buffer
	if compressed(path) {
		xw, err := xz.NewWriter(&buf)
		if err != nil {
			return apperrors.NewIO("compress", path, err)
		}
		if err := Encode(xw, trs); err != nil {
			return err
		}
		if err := xw.Close(); err != nil {
			return apperrors.NewIO("compress", path, err)
		}
	} else if err := Encode(&buf, trs); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return apperrors.NewIO("create", path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.NewIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewIO("write", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewIO("rename", path, err)
	}
	return nil
}

// Load reads the snapshot at path. Compression is detected from the
// content, not the extension.
func Load(path string) (*ann.Transcription, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, apperrors.NewIO("open", path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFound("snapshot", path)
		}
		return nil, apperrors.NewIO("open", path, err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read decodes a plain or xz-compressed snapshot from r, detecting the
// framing from the content. name identifies r in errors.
func Read(r io.Reader, name string) (*ann.Transcription, error) {
	typ, r, err := validation.DetectFileType(r)
	if err != nil {
		return nil, apperrors.NewIO("read", name, err)
	}
	switch typ {
	case validation.FileTypeXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, apperrors.NewIO("decompress", name, err)
		}
		r = xr
	case validation.FileTypeJSON:
	default:
		return nil, &apperrors.ParseError{Format: "snapshot", Path: name,
			Message: fmt.Sprintf("%s content is not a snapshot", typ), Err: validation.ErrFileType}
	}
	trs, err := Decode(validation.LimitReader(r, validation.MaxSnapshotSize))
	if err != nil {
		return nil, apperrors.Wrapf(err, "snapshot %s", name)
	}
	return trs, nil
}
