package ann

import "sort"

// SymbolKind classifies a conventional non-speech tag.
type SymbolKind string

// Symbol kinds.
const (
	SymbolSilence SymbolKind = "silence"
	SymbolPause   SymbolKind = "pause"
	SymbolNoise   SymbolKind = "noise"
	SymbolLaugh   SymbolKind = "laugh"
	SymbolDummy   SymbolKind = "dummy"
)

// SymbolTable maps tag contents to the non-speech event they denote.
// It is passed explicitly to whatever needs to recognize such markers.
type SymbolTable struct {
	symbols map[string]SymbolKind
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]SymbolKind)}
}

// DefaultSymbols returns the orthographic and phonetic markers commonly
// used in transcriptions.
func DefaultSymbols() *SymbolTable {
	st := NewSymbolTable()
	// orthography
	st.Add("#", SymbolSilence)
	st.Add("+", SymbolPause)
	st.Add("*", SymbolNoise)
	st.Add("@", SymbolLaugh)
	st.Add("dummy", SymbolDummy)
	// phonetics
	st.Add("sil", SymbolSilence)
	st.Add("sp", SymbolPause)
	st.Add("spn", SymbolNoise)
	st.Add("gb", SymbolNoise)
	st.Add("@@", SymbolLaugh)
	return st
}

// Add registers content as a symbol of the given kind, replacing any
// previous kind.
func (st *SymbolTable) Add(content string, kind SymbolKind) {
	st.symbols[StrTag(content).Content()] = kind
}

// Kind returns the symbol kind of a tag.
func (st *SymbolTable) Kind(t Tag) (SymbolKind, bool) {
	k, ok := st.symbols[t.Content()]
	return k, ok
}

// Is reports whether t is a symbol of the given kind.
func (st *SymbolTable) Is(t Tag, kind SymbolKind) bool {
	k, ok := st.Kind(t)
	return ok && k == kind
}

// IsSilence reports whether t denotes a silence.
func (st *SymbolTable) IsSilence(t Tag) bool { return st.Is(t, SymbolSilence) }

// IsPause reports whether t denotes a short pause.
func (st *SymbolTable) IsPause(t Tag) bool { return st.Is(t, SymbolPause) }

// IsNoise reports whether t denotes a noise.
func (st *SymbolTable) IsNoise(t Tag) bool { return st.Is(t, SymbolNoise) }

// IsLaugh reports whether t denotes a laugh.
func (st *SymbolTable) IsLaugh(t Tag) bool { return st.Is(t, SymbolLaugh) }

// IsDummy reports whether t is a dummy marker.
func (st *SymbolTable) IsDummy(t Tag) bool { return st.Is(t, SymbolDummy) }

// IsSpeech reports whether t is neither empty nor a symbol.
func (st *SymbolTable) IsSpeech(t Tag) bool {
	if t.IsEmpty() {
		return false
	}
	_, ok := st.Kind(t)
	return !ok
}

// Contents returns the sorted contents registered for the given kinds, or
// for every kind when none is given. The result suits ExportToIntervals.
func (st *SymbolTable) Contents(kinds ...SymbolKind) []string {
	want := make(map[SymbolKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []string
	for content, k := range st.symbols {
		if len(kinds) == 0 || want[k] {
			out = append(out, content)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered symbols.
func (st *SymbolTable) Len() int { return len(st.symbols) }
