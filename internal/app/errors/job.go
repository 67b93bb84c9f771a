package errors

import "fmt"

// Kind classifies why a transcription job did not produce text.
type Kind string

const (
	KindInvalidInput     Kind = "invalid_input"
	KindStaging          Kind = "staging"
	KindModelUnavailable Kind = "model_unavailable"
	KindTranscription    Kind = "transcription"
	KindConflict         Kind = "conflict"
	KindNotFound         Kind = "not_found"
)

// JobError is the classified failure carried by a job result.
type JobError struct {
	Kind    Kind
	Message string
	cause   error
}

func newJobError(kind Kind, message string, cause error) *JobError {
	return &JobError{Kind: kind, Message: message, cause: cause}
}

// StagingError reports that the upload could not be materialized on disk.
func StagingError(cause error) *JobError {
	return newJobError(KindStaging, "failed to stage upload", cause)
}

// ModelUnavailable reports that the model backend is missing or failed to load.
func ModelUnavailable(cause error) *JobError {
	return newJobError(KindModelUnavailable, "model unavailable", cause)
}

// TranscriptionFailed reports that the model ran but failed on this input.
func TranscriptionFailed(cause error) *JobError {
	return newJobError(KindTranscription, "transcription failed", cause)
}

// InvalidInput reports an upload rejected at the input boundary.
func InvalidInput(cause error, format string, args ...interface{}) *JobError {
	return newJobError(KindInvalidInput, fmt.Sprintf(format, args...), cause)
}

// Conflict reports an operation not allowed in the job's current state.
func Conflict(cause error, format string, args ...interface{}) *JobError {
	return newJobError(KindConflict, fmt.Sprintf(format, args...), cause)
}

// UploadNotFound reports an unknown or already consumed upload id.
func UploadNotFound(id string) *JobError {
	return newJobError(KindNotFound, fmt.Sprintf("upload %s not found", id), ErrUploadNotFound)
}

func (e *JobError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *JobError) Unwrap() error {
	return e.cause
}

// UserMessage is the actionable text shown to the person who submitted the job.
// Each kind renders differently so a broken installation is never confused
// with a bad recording.
func (e *JobError) UserMessage() string {
	switch e.Kind {
	case KindStaging:
		return "The upload could not be saved for processing. Check free disk space and permissions, then try again."
	case KindModelUnavailable:
		return "The transcription model is not available on this server. An administrator must fix the model installation and restart the service."
	case KindTranscription:
		if e.cause != nil {
			return fmt.Sprintf("The audio could not be transcribed: %v", e.cause)
		}
		return "The audio could not be transcribed. The file may be corrupt or use an unsupported codec."
	default:
		return e.Message
	}
}

// KindOf returns the Kind of the first JobError in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var jobErr *JobError
	if As(err, &jobErr) {
		return jobErr.Kind
	}
	return ""
}

// AsJobError returns err as a JobError, classifying unknown errors with fallback.
func AsJobError(err error, fallback Kind) *JobError {
	if err == nil {
		return nil
	}
	var jobErr *JobError
	if As(err, &jobErr) {
		return jobErr
	}
	switch fallback {
	case KindStaging:
		return StagingError(err)
	case KindModelUnavailable:
		return ModelUnavailable(err)
	case KindTranscription:
		return TranscriptionFailed(err)
	default:
		return newJobError(fallback, string(fallback), err)
	}
}
