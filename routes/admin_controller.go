package routes

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ngodesk/formflow/app"
	"github.com/ngodesk/formflow/form"
	"github.com/ngodesk/formflow/httpx"
	"github.com/ngodesk/formflow/log"
	"github.com/ngodesk/formflow/model"
)

var validate = validator.New()

func CreateTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tmpl := model.Template{}
		err := render.DecodeJSON(r.Body, &tmpl)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = validate.Struct(tmpl); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		schema, err := tmpl.ToSchema()
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_schema", "%s", err)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		err = insertTemplateTree(r.Context(), tx, schema)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_template", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_template.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":   schema.ID.String(),
			"slug": schema.Slug,
		})
	}
}

func ListTemplates(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT
				t.id, t.name, t.description, t.slug, t.is_public, t.section_location,
				(SELECT count(*) FROM submission s WHERE s.template_id = t.id)
			FROM form_template t
			ORDER BY t.created_at`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_templates", err)
			return
		}
		defer rows.Close()

		templates := []model.Template{}
		for rows.Next() {
			t := model.Template{Sections: []model.Section{}}
			var sectionLocation sql.NullString
			err = rows.Scan(&t.ID, &t.Name, &t.Description, &t.Slug, &t.IsPublic, &sectionLocation, &t.SubmissionCount)
			if err != nil {
				httpx.LogInternalError(w, "db.get_templates.scan", err)
				return
			}
			if sectionLocation.Valid {
				t.SectionLocation = &sectionLocation.String
			}
			templates = append(templates, t)
		}

		render.JSON(w, r, map[string]any{
			"templates": templates,
		})
	}
}

func GetTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		schema, err := loadTemplate(r.Context(), app.DB, templateId, "")
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_template", templateId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_template", err)
			return
		}

		render.JSON(w, r, model.FromSchema(schema))
	}
}

func UpdateTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		tmpl := model.Template{}
		err = render.DecodeJSON(r.Body, &tmpl)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = validate.Struct(tmpl); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}
		tmpl.ID = templateId.String()

		schema, err := tmpl.ToSchema()
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_schema", "%s", err)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		// structure is frozen once submissions exist
		var submissionCount int
		err = tx.QueryRowContext(r.Context(), `
			SELECT count(*) FROM submission WHERE template_id = ?`,
			templateId.String(),
		).Scan(&submissionCount)
		if err != nil {
			httpx.LogInternalError(w, "db.update_template.count_submissions", err)
			return
		}
		if submissionCount > 0 {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel,
				"db.update_template.conflict", "%s", form.ErrTemplateInUse)
			return
		}

		err = deleteTemplateTree(r.Context(), tx, templateId)
		if err != nil {
			httpx.LogInternalError(w, "db.update_template.delete_tree", err)
			return
		}

		res, err := tx.ExecContext(r.Context(), `
			UPDATE form_template
			SET
				name = ?,
				description = ?,
				slug = ?,
				is_public = ?,
				section_location = ?
			WHERE id = ?`,
			schema.Name,
			schema.Description,
			schema.Slug,
			schema.IsPublic,
			nullable(schema.SectionLocation),
			templateId.String(),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_template", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_template.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "update_template", templateId)
			return
		}

		err = insertSectionsAndQuestions(r.Context(), tx, schema)
		if err != nil {
			httpx.LogInternalError(w, "db.update_template.insert_tree", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_template.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		var submissionCount int
		err = tx.QueryRowContext(r.Context(), `
			SELECT count(*) FROM submission WHERE template_id = ?`,
			templateId.String(),
		).Scan(&submissionCount)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_template.count_submissions", err)
			return
		}
		if submissionCount > 0 {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel,
				"db.delete_template.conflict", "%s", form.ErrTemplateInUse)
			return
		}

		err = deleteTemplateTree(r.Context(), tx, templateId)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_template.tree", err)
			return
		}

		res, err := tx.ExecContext(r.Context(), `
			DELETE FROM form_template WHERE id = ?`,
			templateId.String(),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_template", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_template.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_template", templateId)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_template.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetTemplateSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		schema, err := loadTemplate(r.Context(), app.DB, templateId, "")
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_submissions", templateId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_template", err)
			return
		}

		subs, answers, err := loadSubmissions(r.Context(), app.DB, schema)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}

		render.JSON(w, r, form.Project(schema, subs, answers, form.Display))
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
