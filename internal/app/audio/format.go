package audio

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// Format is an accepted audio container, named by its file extension.
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatM4A  Format = "m4a"
	FormatFLAC Format = "flac"
	FormatOGG  Format = "ogg"
	FormatAAC  Format = "aac"
)

// SupportedFormats is the upload allow-list. Nothing else about the content is
// validated; broken audio behind an accepted extension is reported by the model.
var SupportedFormats = []Format{FormatMP3, FormatWAV, FormatM4A, FormatFLAC, FormatOGG, FormatAAC}

// IsSupported reports whether f is on the allow-list.
func (f Format) IsSupported() bool {
	return lo.Contains(SupportedFormats, f)
}

// Ext returns the format as a file extension with the leading dot.
func (f Format) Ext() string {
	return "." + string(f)
}

func (f Format) String() string {
	return string(f)
}

// FormatFromFilename extracts the lowercased extension of name without the dot.
// The result may be unsupported; check with IsSupported.
func FormatFromFilename(name string) Format {
	return Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."))
}

// SupportedExtensions lists the allow-list for messages and HTML accept attributes.
func SupportedExtensions() []string {
	return lo.Map(SupportedFormats, func(f Format, _ int) string {
		return f.Ext()
	})
}
