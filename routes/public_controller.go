package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/ngodesk/formflow/app"
	"github.com/ngodesk/formflow/form"
	"github.com/ngodesk/formflow/httpx"
	"github.com/ngodesk/formflow/log"
	"github.com/ngodesk/formflow/model"
	"github.com/ngodesk/formflow/routes/middlewares"
)

// ListQuestionTypes serves the static question-type catalog the builder UI
// renders its palette from.
func ListQuestionTypes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"types": form.Registry,
		})
	}
}

func PublicGetTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.slug")
			return
		}

		schema, err := loadTemplate(r.Context(), app.DB, uuid.Nil, slug)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_template", slug)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_template", err)
			return
		}

		if !schema.IsPublic && middlewares.Principal(r) == "" {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "get_template.not_public")
			return
		}

		render.JSON(w, r, model.FromSchema(schema))
	}
}

func SubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := form.Payload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		templateId, err := uuid.Parse(payload.FormTemplateID)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body.form_template_id")
			return
		}

		schema, err := loadTemplate(r.Context(), app.DB, templateId, "")
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "submit_form", templateId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_template", err)
			return
		}

		principal := middlewares.Principal(r)
		if !schema.IsPublic && principal == "" {
			httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "submit_form.not_public")
			return
		}

		// decode every answer per its question's type code
		values := map[uuid.UUID]form.Value{}
		for _, a := range payload.Answers {
			questionId, err := uuid.Parse(a.QuestionID)
			if err != nil {
				httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body.question_id")
				return
			}
			q := schema.QuestionByID(questionId)
			if q == nil {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel,
					"submit_form.unknown_question", "question %s does not belong to this form", questionId)
				return
			}
			if !q.Type.Answerable() {
				// display-only questions never store answers
				continue
			}
			v, err := form.DecodeValue(q.Type, a.AnswerValue.Value)
			if err != nil {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "submit_form.parse_value", "%s", err)
				return
			}
			values[questionId] = v
		}

		// the wizard validated client-side; re-check every required
		// question before persisting anyway
		missing := map[string]string{}
		for _, q := range schema.AnswerableQuestions() {
			if !q.Required {
				continue
			}
			if v, ok := values[q.ID]; !ok || v == nil || v.Empty() {
				missing[q.ID.String()] = form.RequiredMessage
			}
		}
		if len(missing) > 0 {
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]any{
				"errors": missing,
			})
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		submissionId := uuid.New()
		var respondentId any
		var respondentEmail string
		if principal != "" {
			respondentId = principal
			err = tx.QueryRowContext(r.Context(), `
				SELECT email FROM user WHERE username = ?`,
				principal,
			).Scan(&respondentEmail)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				httpx.LogInternalError(w, "db.get_respondent_email", err)
				return
			}
		}
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO submission (id, template_id, respondent_id, respondent_name, respondent_email, submitted_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			submissionId.String(),
			templateId.String(),
			respondentId,
			principal,
			respondentEmail,
			time.Now(),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission", err)
			return
		}

		stmt, err := tx.PrepareContext(r.Context(), `
			INSERT INTO answer (submission_id, question_id, value)
			VALUES (?, ?, ?)`)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission.answers.prepare", err)
			return
		}
		defer stmt.Close()

		for _, q := range schema.AnswerableQuestions() {
			v, ok := values[q.ID]
			if !ok || v == nil || v.Empty() {
				continue
			}
			valueJson, err := encodeAnswer(v)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_submission.answers.encode", err)
				return
			}
			_, err = stmt.ExecContext(r.Context(), submissionId.String(), q.ID.String(), valueJson)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_submission.answers.insert", err)
				return
			}
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": submissionId.String(),
		})
	}
}
