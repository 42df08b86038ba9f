package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// intakeTemplate builds the template most tests share: two sections split
// by a page break, three required questions (two in step 1, one in step 2).
func intakeTemplate(t *testing.T) *Template {
	t.Helper()

	tmpl := NewTemplate("Community Intake", "Quarterly intake questionnaire")
	b := NewBuilder(tmpl)

	basics, err := b.AddSection("Basics", "Who is filling this in")
	require.NoError(t, err)
	name, err := b.AddQuestion(basics.ID, "Full name", TypeShortText)
	require.NoError(t, err)
	name.Required = true
	region, err := b.AddQuestion(basics.ID, "Region", TypeDropdown)
	require.NoError(t, err)
	region.Required = true
	require.NoError(t, b.SetConfig(region.ID, ChoiceConfig{Options: []Option{
		{Value: "north", Text: "North"},
		{Value: "south", Text: "South"},
	}}))
	_, err = b.AddQuestion(basics.ID, "", TypePageBreak)
	require.NoError(t, err)

	details, err := b.AddSection("Details", "")
	require.NoError(t, err)
	needs, err := b.AddQuestion(details.ID, "Primary needs", TypeCheckbox)
	require.NoError(t, err)
	needs.Required = true
	require.NoError(t, b.SetConfig(needs.ID, ChoiceConfig{Options: []Option{
		{Value: "food", Text: "Food"},
		{Value: "shelter", Text: "Shelter"},
	}}))

	return tmpl
}

func TestPartitionSplitsOnPageBreak(t *testing.T) {
	tmpl := intakeTemplate(t)

	steps := Partition(tmpl)
	require.Len(t, steps, 2)
	assert.Len(t, steps[0].Questions, 2)
	assert.Len(t, steps[1].Questions, 1)
	assert.Equal(t, "Basics", steps[0].Section.Title)
	assert.Equal(t, "Details", steps[1].Section.Title)
}

func TestPartitionFlattenEqualsQuestionsWithoutPageBreaks(t *testing.T) {
	tmpl := intakeTemplate(t)

	var want []*Question
	for _, q := range tmpl.Questions() {
		if q.Type != TypePageBreak {
			want = append(want, q)
		}
	}

	var got []*Question
	for _, step := range Partition(tmpl) {
		got = append(got, step.Questions...)
	}

	assert.Equal(t, want, got)
}

func TestPartitionNoPageBreaksYieldsSingleStep(t *testing.T) {
	tmpl := NewTemplate("Flat", "")
	b := NewBuilder(tmpl)
	sec, err := b.AddSection("Only", "")
	require.NoError(t, err)
	for _, title := range []string{"One", "Two", "Three", "Four", "Five"} {
		_, err := b.AddQuestion(sec.ID, title, TypeShortText)
		require.NoError(t, err)
	}

	steps := Partition(tmpl)
	require.Len(t, steps, 1)
	assert.Len(t, steps[0].Questions, 5)
}

func TestPartitionDropsEmptyGroups(t *testing.T) {
	tmpl := NewTemplate("Breaks", "")
	b := NewBuilder(tmpl)
	sec, err := b.AddSection("Only", "")
	require.NoError(t, err)
	_, err = b.AddQuestion(sec.ID, "", TypePageBreak)
	require.NoError(t, err)
	_, err = b.AddQuestion(sec.ID, "", TypePageBreak)
	require.NoError(t, err)
	q, err := b.AddQuestion(sec.ID, "Lonely", TypeShortText)
	require.NoError(t, err)
	_, err = b.AddQuestion(sec.ID, "", TypePageBreak)
	require.NoError(t, err)

	steps := Partition(tmpl)
	require.Len(t, steps, 1)
	assert.Equal(t, []*Question{q}, steps[0].Questions)
}
