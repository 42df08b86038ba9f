package routes

import (
	"database/sql"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/ngodesk/formflow/app"
	"github.com/ngodesk/formflow/form"
	"github.com/ngodesk/formflow/httpx"
	"github.com/ngodesk/formflow/log"
)

// ExportSubmissions streams a template's projected submissions. The
// default format is CSV; ?format=sheet returns the columns/rows payload
// the spreadsheet-writer collaborator consumes, with native cell types.
func ExportSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		schema, err := loadTemplate(r.Context(), app.DB, templateId, "")
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "export_submissions", templateId)
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

		switch r.URL.Query().Get("format") {
		case "", "csv":
			table := form.Project(schema, subs, answers, form.PlainText)
			csvBytes, err := form.ExportCSV(table)
			if err != nil {
				httpx.LogInternalError(w, "export.build_csv", err)
				return
			}
			w.Header().Set("content-type", "text/csv; charset=utf-8")
			w.Header().Set("content-disposition", `attachment; filename="`+schema.Slug+`.csv"`)
			w.Write(csvBytes)

		case "sheet":
			render.JSON(w, r, form.Project(schema, subs, answers, form.PassThrough))

		default:
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "export.unknown_format")
		}
	}
}

// UploadFile stores a file through the storage collaborator and returns its
// relative path. Used by the authenticated flow to complete uploads that
// anonymous submissions deferred with a placeholder.
func UploadFile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_multipart")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_file")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			httpx.LogInternalError(w, "request.read_file", err)
			return
		}

		bucket := r.FormValue("bucket")
		if bucket == "" {
			bucket = form.DefaultBucket
		}
		resource := r.FormValue("submission_id")
		if resource == "" {
			resource = uuid.NewString()
		}

		path, err := app.Files.Upload(r.Context(), form.StagedFile{
			Name: header.Filename,
			MIME: header.Header.Get("content-type"),
			Size: header.Size,
			Data: data,
		}, bucket, r.FormValue("owner"), resource)
		if err != nil {
			httpx.LogInternalError(w, "storage.upload", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"path": path,
		})
	}
}

// DownloadFile serves back a stored upload by its relative path.
func DownloadFile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rel := chi.URLParam(r, "*")
		data, err := app.Files.Open(rel)
		if err != nil {
			httpx.LogNotFound(w, "download_file", rel)
			return
		}
		w.Write(data)
	}
}
