package form

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrTemplateInUse rejects structural edits of a template that already has
// submissions. The stored answers reference its questions; the structure is
// frozen, not migrated.
var ErrTemplateInUse = errors.New("form: template has submissions, structure is frozen")

// ErrConfigMismatch rejects a config whose variant does not match the
// question's type code.
var ErrConfigMismatch = errors.New("form: config variant does not match question type")

var errNotFound = errors.New("form: not found")

// Template is the authored, reusable schema of sections and questions.
type Template struct {
	ID          uuid.UUID
	Name        string
	Description string
	Slug        string
	IsPublic    bool

	// SectionLocation names the dashboard area the template belongs to.
	// It doubles as the storage bucket key for uploaded files.
	SectionLocation string

	Sections []*Section

	// SubmissionCount freezes the structure once positive.
	SubmissionCount int
}

// Section groups consecutive questions under one header.
type Section struct {
	ID          uuid.UUID
	Title       string
	Description string

	// OrderIndex is dense and zero-based within the template; reordering
	// recomputes it for all siblings.
	OrderIndex int

	Questions []*Question
}

// Question is one schema entry. Config's concrete variant is mandated by
// Type.
type Question struct {
	ID        uuid.UUID
	SectionID uuid.UUID
	Title     string
	HelpText  string
	Required  bool

	// OrderIndex is global and monotonically increasing across all
	// sections of the template.
	OrderIndex int

	Type   Code
	Config Config
}

var reNoIdent = regexp.MustCompile(`\W+`)

// Slugify derives a URL-safe slug from a template name.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = reNoIdent.ReplaceAllLiteralString(slug, " ")
	return strings.Join(strings.Fields(slug), "-")
}

// NewTemplate creates an empty template with a slug derived from its name.
func NewTemplate(name, description string) *Template {
	return &Template{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Slug:        Slugify(name),
	}
}

// Questions returns every question in template order: sections by
// OrderIndex, questions within each section by their global OrderIndex.
func (t *Template) Questions() []*Question {
	var out []*Question
	for _, s := range t.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

// AnswerableQuestions returns the questions that can produce answers, in
// template order. Display-only and unknown types are excluded.
func (t *Template) AnswerableQuestions() []*Question {
	var out []*Question
	for _, q := range t.Questions() {
		if q.Type.Answerable() {
			out = append(out, q)
		}
	}
	return out
}

// QuestionByID finds a question anywhere in the template.
func (t *Template) QuestionByID(id uuid.UUID) *Question {
	for _, s := range t.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q
			}
		}
	}
	return nil
}

func (t *Template) sectionByID(id uuid.UUID) *Section {
	for _, s := range t.Sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Decision defers a destructive edit until the caller explicitly confirms
// it. The zero Decision is a no-op. There is no shared dialog state: each
// destructive operation returns its own Decision value.
type Decision struct {
	Prompt string
	apply  func()
}

// Confirm applies the deferred edit.
func (d Decision) Confirm() {
	if d.apply != nil {
		d.apply()
	}
}

// Cancel discards the deferred edit.
func (d Decision) Cancel() {}

// Builder edits a template's structure. Every mutation fails with
// ErrTemplateInUse once at least one submission exists.
type Builder struct {
	tmpl *Template
}

func NewBuilder(t *Template) *Builder {
	return &Builder{tmpl: t}
}

func (b *Builder) editable() error {
	if b.tmpl.SubmissionCount > 0 {
		return ErrTemplateInUse
	}
	return nil
}

// nextOrder returns the next global question order index.
func (b *Builder) nextOrder() int {
	next := 0
	for _, q := range b.tmpl.Questions() {
		if q.OrderIndex >= next {
			next = q.OrderIndex + 1
		}
	}
	return next
}

// renumber recomputes dense zero-based section indexes and global question
// indexes after any reorder or removal.
func (b *Builder) renumber() {
	n := 0
	for i, s := range b.tmpl.Sections {
		s.OrderIndex = i
		for _, q := range s.Questions {
			q.OrderIndex = n
			n++
		}
	}
}

// AddSection appends a section at the end of the template.
func (b *Builder) AddSection(title, description string) (*Section, error) {
	if err := b.editable(); err != nil {
		return nil, err
	}
	s := &Section{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		OrderIndex:  len(b.tmpl.Sections),
	}
	b.tmpl.Sections = append(b.tmpl.Sections, s)
	return s, nil
}

// MoveSection moves a section to position to, recomputing every sibling's
// order index.
func (b *Builder) MoveSection(id uuid.UUID, to int) error {
	if err := b.editable(); err != nil {
		return err
	}
	from := -1
	for i, s := range b.tmpl.Sections {
		if s.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return errNotFound
	}
	if to < 0 {
		to = 0
	}
	if to >= len(b.tmpl.Sections) {
		to = len(b.tmpl.Sections) - 1
	}

	secs := b.tmpl.Sections
	s := secs[from]
	secs = append(secs[:from], secs[from+1:]...)
	secs = append(secs[:to], append([]*Section{s}, secs[to:]...)...)
	b.tmpl.Sections = secs

	b.renumber()
	return nil
}

// RemoveSection returns a Decision that, once confirmed, drops the section
// and every question in it.
func (b *Builder) RemoveSection(id uuid.UUID) (Decision, error) {
	if err := b.editable(); err != nil {
		return Decision{}, err
	}
	sec := b.tmpl.sectionByID(id)
	if sec == nil {
		return Decision{}, errNotFound
	}
	return Decision{
		Prompt: "Delete section \"" + sec.Title + "\" and all its questions?",
		apply: func() {
			for i, s := range b.tmpl.Sections {
				if s.ID == id {
					b.tmpl.Sections = append(b.tmpl.Sections[:i], b.tmpl.Sections[i+1:]...)
					break
				}
			}
			b.renumber()
		},
	}, nil
}

// AddQuestion appends a question to a section with the type's default
// configuration and the next global order index.
func (b *Builder) AddQuestion(sectionID uuid.UUID, title string, code Code) (*Question, error) {
	if err := b.editable(); err != nil {
		return nil, err
	}
	sec := b.tmpl.sectionByID(sectionID)
	if sec == nil {
		return nil, errNotFound
	}
	cfg, err := DefaultConfig(code)
	if err != nil {
		return nil, err
	}
	q := &Question{
		ID:         uuid.New(),
		SectionID:  sec.ID,
		Title:      title,
		OrderIndex: b.nextOrder(),
		Type:       code,
		Config:     cfg,
	}
	sec.Questions = append(sec.Questions, q)
	b.renumber()
	return q, nil
}

// DuplicateQuestion inserts a copy of a question right after the original,
// config included.
func (b *Builder) DuplicateQuestion(id uuid.UUID) (*Question, error) {
	if err := b.editable(); err != nil {
		return nil, err
	}
	for _, sec := range b.tmpl.Sections {
		for i, q := range sec.Questions {
			if q.ID != id {
				continue
			}
			dup := *q
			dup.ID = uuid.New()
			sec.Questions = append(sec.Questions[:i+1], append([]*Question{&dup}, sec.Questions[i+1:]...)...)
			b.renumber()
			return &dup, nil
		}
	}
	return nil, errNotFound
}

// MoveQuestion moves a question to position to within its section, then
// renumbers the whole template so the global order stays monotonic.
func (b *Builder) MoveQuestion(id uuid.UUID, to int) error {
	if err := b.editable(); err != nil {
		return err
	}
	for _, sec := range b.tmpl.Sections {
		for i, q := range sec.Questions {
			if q.ID != id {
				continue
			}
			if to < 0 {
				to = 0
			}
			if to >= len(sec.Questions) {
				to = len(sec.Questions) - 1
			}
			qs := sec.Questions
			qs = append(qs[:i], qs[i+1:]...)
			qs = append(qs[:to], append([]*Question{q}, qs[to:]...)...)
			sec.Questions = qs
			b.renumber()
			return nil
		}
	}
	return errNotFound
}

// RemoveQuestion returns a Decision that, once confirmed, drops the
// question.
func (b *Builder) RemoveQuestion(id uuid.UUID) (Decision, error) {
	if err := b.editable(); err != nil {
		return Decision{}, err
	}
	q := b.tmpl.QuestionByID(id)
	if q == nil {
		return Decision{}, errNotFound
	}
	return Decision{
		Prompt: "Delete question \"" + q.Title + "\"?",
		apply: func() {
			for _, sec := range b.tmpl.Sections {
				for i, qq := range sec.Questions {
					if qq.ID == id {
						sec.Questions = append(sec.Questions[:i], sec.Questions[i+1:]...)
						b.renumber()
						return
					}
				}
			}
		},
	}, nil
}

// SetConfig replaces a question's configuration. The variant must match the
// question's type code.
func (b *Builder) SetConfig(id uuid.UUID, cfg Config) error {
	if err := b.editable(); err != nil {
		return err
	}
	q := b.tmpl.QuestionByID(id)
	if q == nil {
		return errNotFound
	}
	if !Matches(q.Type, cfg) {
		return ErrConfigMismatch
	}
	q.Config = cfg
	return nil
}

// SetType changes a question's type. The existing configuration is
// discarded for the new type's default, so the change is returned as a
// Decision.
func (b *Builder) SetType(id uuid.UUID, code Code) (Decision, error) {
	if err := b.editable(); err != nil {
		return Decision{}, err
	}
	q := b.tmpl.QuestionByID(id)
	if q == nil {
		return Decision{}, errNotFound
	}
	cfg, err := DefaultConfig(code)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Prompt: "Changing the question type discards its current configuration. Continue?",
		apply: func() {
			q.Type = code
			q.Config = cfg
		},
	}, nil
}
