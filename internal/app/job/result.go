package job

import (
	"whisper-web/internal/app/errors"
)

const (
	// ExportFilename is the name of the downloadable transcript.
	ExportFilename = "transcription.txt"
	// ExportContentType is the MIME type of the downloadable transcript.
	ExportContentType = "text/plain"
)

// Result is the terminal outcome of a job: text on success, a classified
// error on failure. It is produced once per job and never stored.
type Result struct {
	Text string
	Err  *errors.JobError
}

// Success returns a successful result carrying text.
func Success(text string) Result {
	return Result{Text: text}
}

// Failure returns a failed result.
func Failure(err *errors.JobError) Result {
	return Result{Err: err}
}

// OK reports whether the job produced a transcript.
func (r Result) OK() bool {
	return r.Err == nil
}

// Kind returns the failure kind, or "" on success.
func (r Result) Kind() errors.Kind {
	if r.Err == nil {
		return ""
	}
	return r.Err.Kind
}

// Export is a transcript packaged as a downloadable file.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export packages the transcript for download. Data is exactly Text.
// It returns false for failed results.
func (r Result) Export() (Export, bool) {
	if !r.OK() {
		return Export{}, false
	}
	return Export{
		Filename:    ExportFilename,
		ContentType: ExportContentType,
		Data:        []byte(r.Text),
	}, true
}
