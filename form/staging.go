package form

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// PendingUploadPrefix marks a file answer whose upload is deferred: the
// anonymous flow cannot write to storage, so the placeholder keeps the
// original filename until the authenticated flow completes the upload out
// of band.
const PendingUploadPrefix = "__pending_upload__/"

// PendingUpload builds the placeholder value written for a deferred file.
func PendingUpload(filename string) FileRef {
	return FileRef(PendingUploadPrefix + filename)
}

// IsPendingUpload reports whether a file answer is still a placeholder.
func IsPendingUpload(v FileRef) bool {
	return strings.HasPrefix(string(v), PendingUploadPrefix)
}

// StagedFile is a respondent-selected file held in memory until the wizard
// completes. Nothing is uploaded at selection time: the storage path is
// namespaced by submission id, which does not exist yet.
type StagedFile struct {
	Name string
	MIME string
	Size int64
	Data []byte
}

// Staging holds the files selected for FILE_UPLOAD questions of exactly one
// wizard session, keyed by question id. It is exclusively owned by that
// session and either drained into the encoder at submit time or dropped on
// abandonment.
type Staging struct {
	files map[uuid.UUID]StagedFile
}

func NewStaging() *Staging {
	return &Staging{files: map[uuid.UUID]StagedFile{}}
}

// Stage records a selected file after checking the question's constraints.
// A rejected file never reaches the map: the previous selection, if any,
// stays in place.
func (s *Staging) Stage(q *Question, f StagedFile) error {
	cfg, _ := q.Config.(FileConfig)

	if len(cfg.AllowedTypes) > 0 && !typeAllowed(cfg.AllowedTypes, f) {
		return &FileConstraintError{
			QuestionID: q.ID,
			Filename:   f.Name,
			Reason:     fmt.Sprintf("type not allowed, expected one of %s", strings.Join(cfg.AllowedTypes, ", ")),
		}
	}
	if cfg.MaxSizeMB > 0 && f.Size > int64(cfg.MaxSizeMB)*1024*1024 {
		return &FileConstraintError{
			QuestionID: q.ID,
			Filename:   f.Name,
			Reason:     fmt.Sprintf("file exceeds %d MB", cfg.MaxSizeMB),
		}
	}

	s.files[q.ID] = f
	return nil
}

// typeAllowed matches the file's extension or MIME type against the
// configured allow list. Entries may be extensions (".pdf") or MIME types
// ("application/pdf").
func typeAllowed(allowed []string, f StagedFile) bool {
	ext := strings.ToLower(path.Ext(f.Name))
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if strings.HasPrefix(a, ".") {
			if a == ext {
				return true
			}
		} else if a == strings.ToLower(f.MIME) {
			return true
		}
	}
	return false
}

// Remove drops a staged file.
func (s *Staging) Remove(questionID uuid.UUID) {
	delete(s.files, questionID)
}

// Has reports whether a file is staged for the question. Required-field
// validation of FILE_UPLOAD questions consults this, not the answer map.
func (s *Staging) Has(questionID uuid.UUID) bool {
	_, ok := s.files[questionID]
	return ok
}

// Get returns the staged file for the question.
func (s *Staging) Get(questionID uuid.UUID) (StagedFile, bool) {
	f, ok := s.files[questionID]
	return f, ok
}

func (s *Staging) Len() int {
	return len(s.files)
}

// Drain moves every staged file out, leaving the staging empty. The caller
// takes ownership; selections made afterwards start a fresh set.
func (s *Staging) Drain() map[uuid.UUID]StagedFile {
	out := s.files
	s.files = map[uuid.UUID]StagedFile{}
	return out
}
