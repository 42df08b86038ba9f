package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ngodesk/formflow/app"
	"github.com/ngodesk/formflow/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get("/question-types", ListQuestionTypes())

	// public form rendering and submission; a bearer token is honored for
	// respondent attribution but never required
	api.Group(func(r chi.Router) {
		r.Use(middlewares.MaybeAuthorize(app.TokenSecret))
		r.Get("/forms/{slug}", PublicGetTemplate(app))
		r.Post("/submissions", SubmitForm(app))
	})

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		// CRUD form templates
		r.Post("/templates", CreateTemplate(app))
		r.Get("/templates", ListTemplates(app))
		r.Get("/templates/{id}", GetTemplate(app))
		r.Put("/templates/{id}", UpdateTemplate(app))
		r.Delete("/templates/{id}", DeleteTemplate(app))

		r.Get("/templates/{id}/submissions", GetTemplateSubmissions(app))
		r.Get("/templates/{id}/export", ExportSubmissions(app))

		r.Post("/uploads", UploadFile(app))
		r.Get("/files/*", DownloadFile(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}
