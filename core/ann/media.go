package ann

import (
	"mime"
	"path/filepath"
	"strings"
)

// Media references a file (audio, video) the annotations describe.
type Media struct {
	Metadata
	url      string
	mimeType string
}

// audioTypes covers the extensions the system MIME table often lacks.
var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".wave": "audio/wav",
	".aif":  "audio/aiff",
	".aiff": "audio/aiff",
	".flac": "audio/flac",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".au":   "audio/basic",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
}

// NewMedia returns a media reference. An empty mimeType is guessed from
// the file extension; unknown extensions are taken as audio.
func NewMedia(url, mimeType string) *Media {
	if mimeType == "" {
		mimeType = guessMimeType(url)
	}
	return &Media{Metadata: newMetadata(), url: url, mimeType: mimeType}
}

func guessMimeType(url string) string {
	ext := strings.ToLower(filepath.Ext(url))
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	if ext == "" {
		return "audio/basic"
	}
	return "audio/" + strings.TrimPrefix(ext, ".")
}

// URL returns the media location.
func (m *Media) URL() string { return m.url }

// MimeType returns the media type.
func (m *Media) MimeType() string { return m.mimeType }

// Copy returns an independent copy with the same id.
func (m *Media) Copy() *Media {
	return &Media{Metadata: m.copyMeta(), url: m.url, mimeType: m.mimeType}
}
