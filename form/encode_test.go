package form

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	uploads []string
	fail    bool
}

func (s *fakeStorage) Upload(ctx context.Context, f StagedFile, bucketKey, ownerID, resourceID string) (string, error) {
	if s.fail {
		return "", errors.New("bucket unavailable")
	}
	path := bucketKey + "/" + ownerID + "/" + resourceID + "/" + f.Name
	s.uploads = append(s.uploads, path)
	return path, nil
}

func TestEncodeBuildsWirePayloadInTemplateOrder(t *testing.T) {
	tmpl := intakeTemplate(t)
	questions := tmpl.Questions()
	tmpl.IsPublic = true

	answers := map[uuid.UUID]Value{
		questions[3].ID: List{"food", "shelter"},
		questions[0].ID: Text("Amina Diallo"),
		questions[1].ID: Text("north"),
	}

	payload, err := Encode(context.Background(), EncodeInput{
		Template: tmpl,
		Answers:  answers,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, tmpl.ID.String(), payload.FormTemplateID)
	assert.True(t, payload.IsPublic)
	require.Len(t, payload.Answers, 3)

	// template order, not map order
	assert.Equal(t, questions[0].ID.String(), payload.Answers[0].QuestionID)
	assert.Equal(t, questions[1].ID.String(), payload.Answers[1].QuestionID)
	assert.Equal(t, questions[3].ID.String(), payload.Answers[2].QuestionID)
	assert.Equal(t, []string{"food", "shelter"}, payload.Answers[2].AnswerValue.Value)
}

func TestEncodeSkipsEmptyAnswers(t *testing.T) {
	tmpl := intakeTemplate(t)
	questions := tmpl.Questions()

	payload, err := Encode(context.Background(), EncodeInput{
		Template: tmpl,
		Answers: map[uuid.UUID]Value{
			questions[0].ID: Text("Amina Diallo"),
			questions[1].ID: Text(""),
			questions[3].ID: List{},
		},
	}, nil)
	require.NoError(t, err)
	require.Len(t, payload.Answers, 1)
	assert.Equal(t, questions[0].ID.String(), payload.Answers[0].QuestionID)
}

func TestEncodeResolvesStagedFiles(t *testing.T) {
	tmpl, q := uploadTemplate(t, FileConfig{MaxSizeMB: 5})
	tmpl.SectionLocation = "Field Reports"

	store := &fakeStorage{}
	payload, err := Encode(context.Background(), EncodeInput{
		Template: tmpl,
		Answers:  map[uuid.UUID]Value{},
		Staged: map[uuid.UUID]StagedFile{
			q.ID: {Name: "report.pdf", Size: 100},
		},
		OwnerID: "worker-7",
	}, store)
	require.NoError(t, err)

	require.Len(t, store.uploads, 1)
	require.Len(t, payload.Answers, 1)
	path, ok := payload.Answers[0].AnswerValue.Value.(string)
	require.True(t, ok)
	assert.Contains(t, path, "field-reports/")
	assert.Contains(t, path, "report.pdf")
}

func TestEncodeAbortsWhenAnyUploadFails(t *testing.T) {
	tmpl, q := uploadTemplate(t, FileConfig{MaxSizeMB: 5})

	payload, err := Encode(context.Background(), EncodeInput{
		Template: tmpl,
		Answers:  map[uuid.UUID]Value{},
		Staged: map[uuid.UUID]StagedFile{
			q.ID: {Name: "report.pdf", Size: 100},
		},
	}, &fakeStorage{fail: true})

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "report.pdf", uerr.Filename)
	assert.Nil(t, payload)
}

func TestEncodeDoesNotMutateSessionAnswers(t *testing.T) {
	tmpl, q := uploadTemplate(t, FileConfig{MaxSizeMB: 5})

	answers := map[uuid.UUID]Value{}
	_, err := Encode(context.Background(), EncodeInput{
		Template:  tmpl,
		Answers:   answers,
		Staged:    map[uuid.UUID]StagedFile{q.ID: {Name: "report.pdf", Size: 100}},
		Anonymous: true,
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestBucketKeyDerivesFromSectionLocation(t *testing.T) {
	tmpl := NewTemplate("Any", "")
	assert.Equal(t, DefaultBucket, BucketKey(tmpl))

	tmpl.SectionLocation = "Community Outreach"
	assert.Equal(t, "community-outreach", BucketKey(tmpl))
}
