package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ngodesk/formflow/form"
)

// Template is the wire shape of a form template, matching the retrieval
// contract consumed by the dashboard.
type Template struct {
	ID              string    `json:"id,omitempty"`
	Name            string    `json:"name" validate:"required"`
	Description     string    `json:"description"`
	Slug            string    `json:"slug"`
	IsPublic        bool      `json:"isPublic"`
	SectionLocation *string   `json:"sectionLocation"`
	Sections        []Section `json:"sections" validate:"dive"`
	SubmissionCount int       `json:"submissionCount,omitempty"`
}

type Section struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	OrderIndex  int        `json:"orderIndex"`
	Questions   []Question `json:"questions" validate:"dive"`
}

type Question struct {
	ID         string          `json:"id,omitempty"`
	Title      string          `json:"title" validate:"required"`
	HelpText   string          `json:"helpText,omitempty"`
	IsRequired bool            `json:"isRequired"`
	OrderIndex int             `json:"orderIndex"`
	TypeCode   string          `json:"questionTypeId" validate:"required"`
	Config     json.RawMessage `json:"config,omitempty"`

	QuestionType *QuestionType `json:"questionType,omitempty"`
}

// QuestionType is the catalog entry echoed on retrieval.
type QuestionType struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Submission is the persisted record echoed by listing endpoints.
type Submission struct {
	ID              string    `json:"id"`
	FormTemplateID  string    `json:"form_template_id"`
	RespondentName  string    `json:"respondentName,omitempty"`
	RespondentEmail string    `json:"respondentEmail,omitempty"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// ToSchema converts the wire template into the engine's schema model,
// decoding each question's config per its type code.
func (t Template) ToSchema() (*form.Template, error) {
	out := &form.Template{
		Name:            t.Name,
		Description:     t.Description,
		Slug:            t.Slug,
		IsPublic:        t.IsPublic,
		SubmissionCount: t.SubmissionCount,
	}
	if t.SectionLocation != nil {
		out.SectionLocation = *t.SectionLocation
	}
	if out.Slug == "" {
		out.Slug = form.Slugify(t.Name)
	}

	var err error
	out.ID, err = parseOrNewID(t.ID)
	if err != nil {
		return nil, err
	}

	order := 0
	for i, s := range t.Sections {
		sec := &form.Section{
			Title:       s.Title,
			Description: s.Description,
			OrderIndex:  i,
		}
		sec.ID, err = parseOrNewID(s.ID)
		if err != nil {
			return nil, err
		}

		for _, q := range s.Questions {
			code := form.Code(q.TypeCode)
			var cfg form.Config
			if code.Known() {
				// unknown codes keep a nil config and render as
				// unsupported downstream instead of failing the load
				cfg, err = form.DecodeConfig(code, q.Config)
				if err != nil {
					return nil, err
				}
			}
			qq := &form.Question{
				SectionID:  sec.ID,
				Title:      q.Title,
				HelpText:   q.HelpText,
				Required:   q.IsRequired,
				OrderIndex: order,
				Type:       code,
				Config:     cfg,
			}
			qq.ID, err = parseOrNewID(q.ID)
			if err != nil {
				return nil, err
			}
			order++
			sec.Questions = append(sec.Questions, qq)
		}
		out.Sections = append(out.Sections, sec)
	}
	return out, nil
}

func parseOrNewID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(s)
}

// FromSchema converts the engine's schema model into the wire shape.
func FromSchema(t *form.Template) Template {
	out := Template{
		ID:              t.ID.String(),
		Name:            t.Name,
		Description:     t.Description,
		Slug:            t.Slug,
		IsPublic:        t.IsPublic,
		SubmissionCount: t.SubmissionCount,
	}
	if t.SectionLocation != "" {
		loc := t.SectionLocation
		out.SectionLocation = &loc
	}

	for _, s := range t.Sections {
		sec := Section{
			ID:          s.ID.String(),
			Title:       s.Title,
			Description: s.Description,
			OrderIndex:  s.OrderIndex,
			Questions:   []Question{},
		}
		for _, q := range s.Questions {
			wire := Question{
				ID:         q.ID.String(),
				Title:      q.Title,
				HelpText:   q.HelpText,
				IsRequired: q.Required,
				OrderIndex: q.OrderIndex,
				TypeCode:   string(q.Type),
			}
			if raw, err := form.EncodeConfig(q.Config); err == nil && raw != nil {
				wire.Config = raw
			}
			if info, ok := form.TypeOf(q.Type); ok {
				wire.QuestionType = &QuestionType{Code: string(info.Code), Name: info.Name}
			}
			sec.Questions = append(sec.Questions, wire)
		}
		out.Sections = append(out.Sections, sec)
	}
	return out
}
