package form

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Community Intake", "community-intake"},
		{"Volunteer Sign-Up (2026)", "volunteer-sign-up-2026"},
		{"  Spaced   Out  ", "spaced-out"},
		{"Déjà vu", "d-j-vu"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestBuilderKeepsGlobalOrderMonotonic(t *testing.T) {
	tmpl := intakeTemplate(t)

	prev := -1
	for _, q := range tmpl.Questions() {
		assert.Greater(t, q.OrderIndex, prev)
		prev = q.OrderIndex
	}
	for i, s := range tmpl.Sections {
		assert.Equal(t, i, s.OrderIndex)
	}
}

func TestMoveSectionRenumbersEverything(t *testing.T) {
	tmpl := intakeTemplate(t)
	b := NewBuilder(tmpl)

	details := tmpl.Sections[1]
	require.NoError(t, b.MoveSection(details.ID, 0))

	assert.Equal(t, "Details", tmpl.Sections[0].Title)
	assert.Equal(t, 0, tmpl.Sections[0].OrderIndex)
	assert.Equal(t, "Basics", tmpl.Sections[1].Title)

	// the moved section's question now comes first globally
	assert.Equal(t, "Primary needs", tmpl.Questions()[0].Title)
	assert.Equal(t, 0, tmpl.Questions()[0].OrderIndex)
}

func TestMoveQuestionClampsTargetIndex(t *testing.T) {
	tmpl := intakeTemplate(t)
	b := NewBuilder(tmpl)
	basics := tmpl.Sections[0]

	require.NoError(t, b.MoveQuestion(basics.Questions[0].ID, 99))
	assert.Equal(t, "Full name", basics.Questions[len(basics.Questions)-1].Title)

	require.NoError(t, b.MoveQuestion(basics.Questions[2].ID, -5))
	assert.Equal(t, "Full name", basics.Questions[0].Title)
}

func TestDuplicateQuestionInsertsAdjacentCopy(t *testing.T) {
	tmpl := intakeTemplate(t)
	b := NewBuilder(tmpl)
	region := tmpl.Sections[0].Questions[1]

	dup, err := b.DuplicateQuestion(region.ID)
	require.NoError(t, err)

	assert.NotEqual(t, region.ID, dup.ID)
	assert.Equal(t, region.Title, dup.Title)
	assert.Equal(t, region.Config, dup.Config)
	assert.Equal(t, dup, tmpl.Sections[0].Questions[2])
	assert.Equal(t, region.OrderIndex+1, dup.OrderIndex)
}

func TestRemoveQuestionNeedsConfirmation(t *testing.T) {
	tmpl := intakeTemplate(t)
	b := NewBuilder(tmpl)
	name := tmpl.Sections[0].Questions[0]
	before := len(tmpl.Questions())

	d, err := b.RemoveQuestion(name.ID)
	require.NoError(t, err)
	assert.Contains(t, d.Prompt, "Full name")

	d.Cancel()
	assert.Len(t, tmpl.Questions(), before)

	d, err = b.RemoveQuestion(name.ID)
	require.NoError(t, err)
	d.Confirm()
	assert.Len(t, tmpl.Questions(), before-1)
	assert.Nil(t, tmpl.QuestionByID(name.ID))
	assert.Equal(t, 0, tmpl.Questions()[0].OrderIndex)
}

func TestRemoveSectionDropsItsQuestions(t *testing.T) {
	tmpl := intakeTemplate(t)
	b := NewBuilder(tmpl)
	basics := tmpl.Sections[0]

	d, err := b.RemoveSection(basics.ID)
	require.NoError(t, err)
	d.Confirm()

	require.Len(t, tmpl.Sections, 1)
	assert.Equal(t, "Details", tmpl.Sections[0].Title)
	assert.Equal(t, 0, tmpl.Sections[0].OrderIndex)
	assert.Equal(t, 0, tmpl.Questions()[0].OrderIndex)
}

func TestSetConfigRejectsVariantMismatch(t *testing.T) {
	tmpl := intakeTemplate(t)
	b := NewBuilder(tmpl)
	name := tmpl.Sections[0].Questions[0] // SHORT_TEXT

	err := b.SetConfig(name.ID, ChoiceConfig{})
	assert.ErrorIs(t, err, ErrConfigMismatch)

	assert.NoError(t, b.SetConfig(name.ID, TextConfig{MaxLength: 80}))
}

func TestSetTypeDiscardsConfigOnConfirm(t *testing.T) {
	tmpl := intakeTemplate(t)
	b := NewBuilder(tmpl)
	region := tmpl.Sections[0].Questions[1]

	d, err := b.SetType(region.ID, TypeShortText)
	require.NoError(t, err)

	d.Cancel()
	assert.Equal(t, TypeDropdown, region.Type)

	d, err = b.SetType(region.ID, TypeShortText)
	require.NoError(t, err)
	d.Confirm()
	assert.Equal(t, TypeShortText, region.Type)
	assert.IsType(t, TextConfig{}, region.Config)
}

func TestBuilderFreezesAfterFirstSubmission(t *testing.T) {
	tmpl := intakeTemplate(t)
	tmpl.SubmissionCount = 1
	b := NewBuilder(tmpl)
	name := tmpl.Sections[0].Questions[0]

	_, err := b.AddSection("More", "")
	assert.ErrorIs(t, err, ErrTemplateInUse)
	_, err = b.AddQuestion(tmpl.Sections[0].ID, "Extra", TypeShortText)
	assert.ErrorIs(t, err, ErrTemplateInUse)
	_, err = b.RemoveQuestion(name.ID)
	assert.ErrorIs(t, err, ErrTemplateInUse)
	assert.ErrorIs(t, b.SetConfig(name.ID, TextConfig{}), ErrTemplateInUse)
	_, err = b.SetType(name.ID, TypeLongText)
	assert.ErrorIs(t, err, ErrTemplateInUse)
}

func TestBuilderUnknownIDs(t *testing.T) {
	tmpl := intakeTemplate(t)
	b := NewBuilder(tmpl)

	_, err := b.AddQuestion(uuid.New(), "Nowhere", TypeShortText)
	assert.Error(t, err)
	assert.Error(t, b.MoveQuestion(uuid.New(), 0))
	_, err = b.DuplicateQuestion(uuid.New())
	assert.Error(t, err)
}
