package form

import (
	"fmt"

	"github.com/google/uuid"
)

// RequiredMessage is the per-question message set when a required question
// has no answer.
const RequiredMessage = "required"

// ValidationError reports required questions left unanswered, keyed by
// question id. It is always locally recoverable: the caller surfaces the
// messages inline and the respondent fills the gaps.
type ValidationError struct {
	Fields map[uuid.UUID]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form: %d required questions unanswered", len(e.Fields))
}

// FileConstraintError rejects a file at selection time, before it reaches
// staging: wrong type or oversized.
type FileConstraintError struct {
	QuestionID uuid.UUID
	Filename   string
	Reason     string
}

func (e *FileConstraintError) Error() string {
	return fmt.Sprintf("form: file %q rejected: %s", e.Filename, e.Reason)
}

// UploadError wraps a storage collaborator failure while resolving a staged
// file. It aborts the submission before any network call; session state is
// kept for retry.
type UploadError struct {
	QuestionID uuid.UUID
	Filename   string
	Err        error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("form: upload of %q failed: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// SubmissionError is a domain-level rejection of the persistence request.
// The wizard stays on the last step; retry is re-pressing submit.
type SubmissionError struct {
	Message string
}

func (e *SubmissionError) Error() string { return "form: submission rejected: " + e.Message }

// UnknownTypeError marks a question type code missing from the registry.
// Never fatal: the question renders an unsupported placeholder and is
// excluded from validation and progress.
type UnknownTypeError struct {
	Code Code
}

func (e *UnknownTypeError) Error() string {
	return "form: unknown question type " + string(e.Code)
}
