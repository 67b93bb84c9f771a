package staging

import (
	"bytes"
	"io"
	"strings"

	"whisper-web/internal/app/audio"
	"whisper-web/internal/app/errors"
)

// UploadedAudio is an uploaded recording as received from the presentation
// layer. It is immutable: the constructor copies the caller's buffer.
type UploadedAudio struct {
	filename string
	format   audio.Format
	data     []byte
}

// NewUploadedAudio validates the declared extension against the allow-list and
// captures the bytes. Content is not inspected.
func NewUploadedAudio(filename string, data []byte) (UploadedAudio, error) {
	format := audio.FormatFromFilename(filename)
	if !format.IsSupported() {
		return UploadedAudio{}, errors.InvalidInput(errors.ErrUnsupportedFormat,
			"unsupported file type %q, accepted: %s",
			format.Ext(), strings.Join(audio.SupportedExtensions(), ", "))
	}
	if len(data) == 0 {
		return UploadedAudio{}, errors.InvalidInput(errors.ErrEmptyUpload, "uploaded file %q is empty", filename)
	}

	return UploadedAudio{
		filename: filename,
		format:   format,
		data:     bytes.Clone(data),
	}, nil
}

// Filename is the name the user uploaded.
func (u UploadedAudio) Filename() string {
	return u.filename
}

// Format is the declared audio format.
func (u UploadedAudio) Format() audio.Format {
	return u.format
}

// Size is the byte length of the recording.
func (u UploadedAudio) Size() int64 {
	return int64(len(u.data))
}

// Reader returns a fresh reader over the recording.
func (u UploadedAudio) Reader() io.Reader {
	return bytes.NewReader(u.data)
}
