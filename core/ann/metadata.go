package ann

import (
	"os"
	"runtime"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// MetaID is the reserved metadata key holding an object identifier.
const MetaID = "id"

// Metadata is an ordered string-to-string mapping. It is embedded in
// every core object. Objects built with their constructor carry a
// generated id under MetaID.
type Metadata struct {
	keys   []string
	values map[string]string
}

func newMetadata() Metadata {
	m := Metadata{values: make(map[string]string)}
	m.SetMeta(MetaID, uuid.New().String())
	return m
}

// SetMeta sets a key, keeping its position when it already exists.
func (m *Metadata) SetMeta(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// GetMeta returns the value of key, or "" if absent.
func (m *Metadata) GetMeta(key string) string {
	return m.values[key]
}

// IsMetaKey reports whether key is set.
func (m *Metadata) IsMetaKey(key string) bool {
	_, ok := m.values[key]
	return ok
}

// PopMeta removes a key. The id cannot be removed.
func (m *Metadata) PopMeta(key string) error {
	if key == MetaID {
		return apperrors.NewInvariant("metadata", "the id key cannot be removed")
	}
	if _, ok := m.values[key]; !ok {
		return apperrors.NewNotFound("metadata key", key)
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	return nil
}

// MetaKeys returns the keys in insertion order.
func (m *Metadata) MetaKeys() []string {
	return slices.Clone(m.keys)
}

// ID returns the object identifier.
func (m *Metadata) ID() string { return m.GetMeta(MetaID) }

// copyMeta returns an independent copy, id included.
func (m *Metadata) copyMeta() Metadata {
	c := Metadata{keys: slices.Clone(m.keys), values: make(map[string]string, len(m.values))}
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}

// AddSoftwareMetadata records the program and the platform that produced
// the object.
func (m *Metadata) AddSoftwareMetadata(name, version string) {
	m.SetMeta("software_name", name)
	m.SetMeta("software_version", version)
	m.SetMeta("language_name", "Go")
	m.SetMeta("language_version", runtime.Version())
	m.SetMeta("os", runtime.GOOS+"/"+runtime.GOARCH)
	if host, err := os.Hostname(); err == nil {
		m.SetMeta("hostname", host)
	}
}

// AddLanguageMetadata records an ISO 639-3 language code under
// "language_code_<n>", numbering languages from 1.
func (m *Metadata) AddLanguageMetadata(code string) {
	n := 1
	for m.IsMetaKey("language_code_" + strconv.Itoa(n)) {
		if m.GetMeta("language_code_"+strconv.Itoa(n)) == code {
			return
		}
		n++
	}
	m.SetMeta("language_code_"+strconv.Itoa(n), code)
}

// AddTimestampMetadata records the creation date in RFC 3339 form.
func (m *Metadata) AddTimestampMetadata(now time.Time) {
	m.SetMeta("file_created_date", now.UTC().Format(time.RFC3339))
}
