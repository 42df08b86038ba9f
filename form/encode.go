package form

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Storage is the external collaborator that durably stores a staged file
// and returns the relative path it ended up under. The engine never builds
// absolute URLs itself. bucketKey groups files by the template's section
// location; resourceID namespaces them under a submission id.
type Storage interface {
	Upload(ctx context.Context, f StagedFile, bucketKey, ownerID, resourceID string) (string, error)
}

// Payload is the wire shape of POST /submissions. Key casing is part of the
// contract.
type Payload struct {
	FormTemplateID string          `json:"form_template_id"`
	IsPublic       bool            `json:"isPublic"`
	Answers        []PayloadAnswer `json:"answers"`
}

// PayloadAnswer is one per-question entry of the wire payload.
type PayloadAnswer struct {
	QuestionID  string      `json:"question_id"`
	AnswerValue AnswerValue `json:"answer_value"`
}

// AnswerValue wraps the raw value in the envelope the persistence API
// expects.
type AnswerValue struct {
	Value any `json:"value"`
}

// DefaultBucket is the storage bucket used when a template has no section
// location.
const DefaultBucket = "forms"

// BucketKey derives the storage bucket for a template's uploads.
func BucketKey(t *Template) string {
	if t.SectionLocation == "" {
		return DefaultBucket
	}
	return Slugify(t.SectionLocation)
}

// EncodeInput carries one completed wizard run into the encoder. Staged is
// moved in, not copied: the encoder owns the files from here on.
type EncodeInput struct {
	Template  *Template
	Answers   map[uuid.UUID]Value
	Staged    map[uuid.UUID]StagedFile
	Anonymous bool
	OwnerID   string
}

// ResolveStaged stores every staged file and returns the file answers to
// merge over the answer map, keyed by question. Anonymous runs skip storage
// entirely and resolve to pending-upload placeholders carrying the original
// filename. Any upload failure aborts the whole resolution, so either every
// staged file has a durable path or none was consumed.
func ResolveStaged(ctx context.Context, in EncodeInput, store Storage) (map[uuid.UUID]Value, error) {
	// temporary submission id: the real one does not exist until the
	// persistence request succeeds
	resourceID := uuid.NewString()

	resolved := make(map[uuid.UUID]Value, len(in.Staged))
	for qid, f := range in.Staged {
		if in.Anonymous {
			resolved[qid] = PendingUpload(f.Name)
			continue
		}
		if store == nil {
			return nil, &UploadError{QuestionID: qid, Filename: f.Name, Err: errors.New("no storage configured")}
		}
		path, err := store.Upload(ctx, f, BucketKey(in.Template), in.OwnerID, resourceID)
		if err != nil {
			return nil, &UploadError{QuestionID: qid, Filename: f.Name, Err: err}
		}
		resolved[qid] = FileRef(path)
	}
	return resolved, nil
}

// Encode assembles the wire payload for a validated wizard run. Every
// staged file is first resolved to a stored relative path through the
// storage collaborator; any resolution failure aborts the whole submit
// before a network call happens, so no partial submission is ever sent.
func Encode(ctx context.Context, in EncodeInput, store Storage) (*Payload, error) {
	merged := make(map[uuid.UUID]Value, len(in.Answers)+len(in.Staged))
	for id, v := range in.Answers {
		merged[id] = v
	}

	resolved, err := ResolveStaged(ctx, in, store)
	if err != nil {
		return nil, err
	}
	for qid, v := range resolved {
		// resolved path overwrites any placeholder
		merged[qid] = v
	}

	payload := &Payload{
		FormTemplateID: in.Template.ID.String(),
		IsPublic:       in.Template.IsPublic,
	}
	for _, q := range in.Template.AnswerableQuestions() {
		v, ok := merged[q.ID]
		if !ok || v == nil || v.Empty() {
			continue
		}
		payload.Answers = append(payload.Answers, PayloadAnswer{
			QuestionID:  q.ID.String(),
			AnswerValue: AnswerValue{Value: Wire(v)},
		})
	}
	return payload, nil
}
