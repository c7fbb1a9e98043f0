// Package formats declares the annotation file formats the tooling knows
// about, each with the capability profile of its adapter, and reports what
// a transcription would lose when written in one of them.
package formats

import (
	"sort"
	"strings"
	"sync"

	"github.com/FocuswithJustin/annokit/core/ann"
	apperrors "github.com/FocuswithJustin/annokit/core/errors"
)

// Profile describes one file format.
type Profile struct {
	// Name is the registry key (e.g. "textgrid").
	Name string `json:"name" yaml:"name"`

	// Description is a human-readable label.
	Description string `json:"description" yaml:"description"`

	// Extensions lists the file extensions, lowercase, with the dot.
	Extensions []string `json:"extensions" yaml:"extensions"`

	// Capabilities is what the format can carry.
	Capabilities ann.Capabilities `json:"capabilities" yaml:"capabilities"`
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Profile)
)

// Register adds a profile, replacing any profile with the same name.
func Register(p *Profile) error {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return apperrors.NewInvariant("format registry", "profile has no name")
	}
	c := *p
	c.Name = strings.ToLower(strings.TrimSpace(p.Name))
	c.Extensions = make([]string, len(p.Extensions))
	for i, ext := range p.Extensions {
		c.Extensions[i] = normalizeExt(ext)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.Name] = &c
	return nil
}

// Get returns the profile registered under name, ignoring case.
func Get(name string) (*Profile, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, apperrors.NewNotFound("format", name)
	}
	return p, nil
}

// Has reports whether a profile is registered under name.
func Has(name string) bool {
	_, err := Get(name)
	return err == nil
}

// List returns every registered profile sorted by name.
func List() []*Profile {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]*Profile, 0, len(registry))
	for _, p := range registry {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// ByExtension returns the profiles handling a file extension or a file
// name, sorted by name.
func ByExtension(pathOrExt string) []*Profile {
	ext := pathOrExt
	if i := strings.LastIndexByte(ext, '.'); i >= 0 {
		ext = ext[i:]
	}
	ext = normalizeExt(ext)

	var result []*Profile
	for _, p := range List() {
		for _, e := range p.Extensions {
			if e == ext {
				result = append(result, p)
				break
			}
		}
	}
	return result
}

// Reset restores the built-in profiles only (for testing).
func Reset() {
	registryMu.Lock()
	registry = make(map[string]*Profile)
	registryMu.Unlock()
	registerBuiltins()
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
