package form

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Session walks one respondent through a template's wizard. It owns the
// answer map, the per-question error map and the file staging exclusively;
// the engine is single-threaded and performs no locking. Answers and errors
// persist across step transitions, so navigating back retains earlier
// input.
type Session struct {
	Template  *Template
	Steps     []Step
	Anonymous bool

	stepIndex int
	answers   map[uuid.UUID]Value
	errors    map[uuid.UUID]string
	staging   *Staging
}

// NewSession partitions the template into steps and starts at the first.
func NewSession(t *Template, anonymous bool) *Session {
	return &Session{
		Template:  t,
		Steps:     Partition(t),
		Anonymous: anonymous,
		answers:   map[uuid.UUID]Value{},
		errors:    map[uuid.UUID]string{},
		staging:   NewStaging(),
	}
}

func (s *Session) StepIndex() int { return s.stepIndex }

// Step returns the current step.
func (s *Session) Step() Step {
	if len(s.Steps) == 0 {
		return Step{}
	}
	return s.Steps[s.stepIndex]
}

// OnLastStep reports whether Submit is enabled.
func (s *Session) OnLastStep() bool {
	return s.stepIndex >= len(s.Steps)-1
}

// Widgets renders the current step's questions to their input affordances.
func (s *Session) Widgets() []Widget {
	step := s.Step()
	out := make([]Widget, len(step.Questions))
	for i, q := range step.Questions {
		out[i] = WidgetFor(q)
	}
	return out
}

// SetAnswer records an answer. An empty value still overwrites: clearing an
// answer is a legitimate edit and counts as unanswered again.
func (s *Session) SetAnswer(questionID uuid.UUID, v Value) {
	s.answers[questionID] = v
}

// ClearAnswer removes an answer entirely.
func (s *Session) ClearAnswer(questionID uuid.UUID) {
	delete(s.answers, questionID)
}

// Answer returns the recorded answer for a question.
func (s *Session) Answer(questionID uuid.UUID) (Value, bool) {
	v, ok := s.answers[questionID]
	return v, ok
}

// Errors returns the live per-question error map.
func (s *Session) Errors() map[uuid.UUID]string {
	return s.errors
}

// StageFile stages a file for a FILE_UPLOAD question. Constraint violations
// populate the question's error and leave the staging untouched.
func (s *Session) StageFile(questionID uuid.UUID, f StagedFile) error {
	q := s.Template.QuestionByID(questionID)
	if q == nil {
		return errNotFound
	}
	if err := s.staging.Stage(q, f); err != nil {
		var fce *FileConstraintError
		if errors.As(err, &fce) {
			s.errors[questionID] = fce.Reason
		}
		return err
	}
	delete(s.errors, questionID)
	return nil
}

// RemoveFile drops a staged file.
func (s *Session) RemoveFile(questionID uuid.UUID) {
	s.staging.Remove(questionID)
}

// StagedFiles exposes the staging for rendering.
func (s *Session) StagedFiles() *Staging {
	return s.staging
}

// answered reports whether the question has a present, non-empty value.
// FILE_UPLOAD is satisfied by a staged file or by an already-resolved file
// reference in the answer map; any other value does not count.
func (s *Session) answered(q *Question) bool {
	if q.Type == TypeFileUpload {
		if s.staging.Has(q.ID) {
			return true
		}
		ref, ok := s.answers[q.ID].(FileRef)
		return ok && !ref.Empty()
	}
	v, ok := s.answers[q.ID]
	return ok && v != nil && !v.Empty()
}

// validatable excludes display-only and unknown types: one bad question
// never blocks the whole template.
func validatable(q *Question) bool {
	return q.Type.Known() && q.Type.Answerable()
}

func (s *Session) validate(questions []*Question) map[uuid.UUID]string {
	failed := map[uuid.UUID]string{}
	for _, q := range questions {
		if !validatable(q) || !q.Required {
			continue
		}
		if !s.answered(q) {
			failed[q.ID] = RequiredMessage
		}
	}
	return failed
}

// Next runs local validation over the current step only. On success the
// step index advances; on failure every failing question lands in the error
// map and the step stays. No network call is involved.
func (s *Session) Next() bool {
	failed := s.validate(s.Step().Questions)
	if len(failed) > 0 {
		for id, msg := range failed {
			s.errors[id] = msg
		}
		return false
	}
	for _, q := range s.Step().Questions {
		delete(s.errors, q.ID)
	}
	if !s.OnLastStep() {
		s.stepIndex++
	}
	return true
}

// Prev retreats unconditionally. Errors are not cleared.
func (s *Session) Prev() {
	if s.stepIndex > 0 {
		s.stepIndex--
	}
}

// Progress is computed over all steps, not just the current one: answered
// answerable questions over total answerable questions.
func (s *Session) Progress() float64 {
	total, answered := 0, 0
	for _, q := range s.Template.Questions() {
		if !validatable(q) {
			continue
		}
		total++
		if s.answered(q) {
			answered++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(answered) / float64(total)
}

// Submit re-validates the current step, then every required question across
// the whole template (a user may have double-backed and cleared an earlier
// answer), then hands off to the encoder. All session state survives a
// failure, so retry is just re-pressing submit: resolved file paths become
// regular answers, and a submit after a failed persistence request re-runs
// the same encode without re-uploading anything.
func (s *Session) Submit(ctx context.Context, store Storage, ownerID string) (*Payload, error) {
	failed := s.validate(s.Step().Questions)
	for id, msg := range s.validate(s.Template.Questions()) {
		failed[id] = msg
	}
	if len(failed) > 0 {
		for id, msg := range failed {
			s.errors[id] = msg
		}
		return nil, &ValidationError{Fields: failed}
	}

	resolved, err := ResolveStaged(ctx, EncodeInput{
		Template:  s.Template,
		Staged:    s.staging.files,
		Anonymous: s.Anonymous,
		OwnerID:   ownerID,
	}, store)
	if err != nil {
		return nil, err
	}
	for id, v := range resolved {
		s.answers[id] = v
	}
	// every staged file now lives in the answer map as a file reference
	s.staging = NewStaging()

	return Encode(ctx, EncodeInput{
		Template: s.Template,
		Answers:  s.answers,
	}, store)
}

// Abandon discards all session state, staged files included.
func (s *Session) Abandon() {
	s.answers = map[uuid.UUID]Value{}
	s.errors = map[uuid.UUID]string{}
	s.staging = NewStaging()
	s.stepIndex = 0
}
