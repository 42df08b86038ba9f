package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngodesk/formflow/app"
	"github.com/ngodesk/formflow/config"
	"github.com/ngodesk/formflow/database"
	"github.com/ngodesk/formflow/form"
)

func newTestApp(t *testing.T) app.App {
	t.Helper()

	db, err := database.Open(config.Config{
		DBUrl: filepath.Join(t.TempDir(), "test.sqlite"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return app.App{DB: db}
}

// insertIntakeTemplate persists a public template with two required
// questions and one optional.
func insertIntakeTemplate(t *testing.T, a app.App) *form.Template {
	t.Helper()

	tmpl := form.NewTemplate("Community Intake", "")
	tmpl.IsPublic = true
	b := form.NewBuilder(tmpl)
	sec, err := b.AddSection("Basics", "")
	require.NoError(t, err)
	name, err := b.AddQuestion(sec.ID, "Full name", form.TypeShortText)
	require.NoError(t, err)
	name.Required = true
	needs, err := b.AddQuestion(sec.ID, "Primary needs", form.TypeCheckbox)
	require.NoError(t, err)
	needs.Required = true
	_, err = b.AddQuestion(sec.ID, "Notes", form.TypeLongText)
	require.NoError(t, err)

	tx, err := a.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, insertTemplateTree(context.Background(), tx, tmpl))
	require.NoError(t, tx.Commit())
	return tmpl
}

func postSubmission(t *testing.T, a app.App, payload form.Payload) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	SubmitForm(a)(w, req)
	return w
}

func TestSubmitFormRejectsMissingRequired(t *testing.T) {
	a := newTestApp(t)
	tmpl := insertIntakeTemplate(t, a)
	questions := tmpl.Questions()

	w := postSubmission(t, a, form.Payload{
		FormTemplateID: tmpl.ID.String(),
		IsPublic:       true,
		Answers: []form.PayloadAnswer{
			{QuestionID: questions[0].ID.String(), AnswerValue: form.AnswerValue{Value: "Amina Diallo"}},
		},
	})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, form.RequiredMessage, resp.Errors[questions[1].ID.String()])
	assert.NotContains(t, resp.Errors, questions[0].ID.String())
}

func TestSubmitFormPersistsAnswers(t *testing.T) {
	a := newTestApp(t)
	tmpl := insertIntakeTemplate(t, a)
	questions := tmpl.Questions()

	w := postSubmission(t, a, form.Payload{
		FormTemplateID: tmpl.ID.String(),
		IsPublic:       true,
		Answers: []form.PayloadAnswer{
			{QuestionID: questions[0].ID.String(), AnswerValue: form.AnswerValue{Value: "Amina Diallo"}},
			{QuestionID: questions[1].ID.String(), AnswerValue: form.AnswerValue{Value: []string{"food", "shelter"}}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	subs, answers, err := loadSubmissions(context.Background(), a.DB, tmpl)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Len(t, answers, 2)

	byQuestion := map[string]form.Value{}
	for _, row := range answers {
		byQuestion[row.QuestionID.String()] = row.Value
	}
	assert.Equal(t, form.Text("Amina Diallo"), byQuestion[questions[0].ID.String()])
	assert.Equal(t, form.List{"food", "shelter"}, byQuestion[questions[1].ID.String()])
}

func TestSubmitFormAttributesAuthenticatedRespondent(t *testing.T) {
	a := newTestApp(t)
	tmpl := insertIntakeTemplate(t, a)
	questions := tmpl.Questions()

	_, err := a.ExecContext(context.Background(), `
		INSERT INTO user (username, password_hash, email) VALUES (?, ?, ?)`,
		"amina", "not-a-real-hash", "amina@example.org")
	require.NoError(t, err)

	body, err := json.Marshal(form.Payload{
		FormTemplateID: tmpl.ID.String(),
		Answers: []form.PayloadAnswer{
			{QuestionID: questions[0].ID.String(), AnswerValue: form.AnswerValue{Value: "Amina Diallo"}},
			{QuestionID: questions[1].ID.String(), AnswerValue: form.AnswerValue{Value: []string{"food"}}},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", bytes.NewReader(body))
	claims := map[string]string{"username": "amina", "roles": "admin"}
	req = req.WithContext(context.WithValue(req.Context(), oauth.ClaimsContext, claims))
	w := httptest.NewRecorder()
	SubmitForm(a)(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	subs, _, err := loadSubmissions(context.Background(), a.DB, tmpl)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "amina", subs[0].RespondentName)
	assert.Equal(t, "amina@example.org", subs[0].RespondentEmail)
}

func TestSubmitFormRejectsForeignQuestion(t *testing.T) {
	a := newTestApp(t)
	tmpl := insertIntakeTemplate(t, a)
	other := insertOtherTemplate(t, a)

	w := postSubmission(t, a, form.Payload{
		FormTemplateID: tmpl.ID.String(),
		Answers: []form.PayloadAnswer{
			{QuestionID: other.Questions()[0].ID.String(), AnswerValue: form.AnswerValue{Value: "x"}},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func insertOtherTemplate(t *testing.T, a app.App) *form.Template {
	t.Helper()

	tmpl := form.NewTemplate("Other", "")
	b := form.NewBuilder(tmpl)
	sec, err := b.AddSection("Only", "")
	require.NoError(t, err)
	_, err = b.AddQuestion(sec.ID, "Stray", form.TypeShortText)
	require.NoError(t, err)

	tx, err := a.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, insertTemplateTree(context.Background(), tx, tmpl))
	require.NoError(t, tx.Commit())
	return tmpl
}

func TestPublicGetTemplateHidesPrivateForms(t *testing.T) {
	a := newTestApp(t)
	tmpl := insertIntakeTemplate(t, a)

	_, err := a.ExecContext(context.Background(),
		`UPDATE form_template SET is_public = 0 WHERE id = ?`, tmpl.ID.String())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/forms/{slug}", PublicGetTemplate(a))

	req := httptest.NewRequest(http.MethodGet, "/forms/"+tmpl.Slug, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/forms/no-such-form", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
