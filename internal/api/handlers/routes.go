// routes.go — таблица маршрутов gateway.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Пути перенаправлений.
const (
	loginPath     = "/login"
	documentsPath = "/dashboard/documents"
)

// Mount регистрирует маршруты обработчика в router.
// requireSession применяется ко всем маршрутам /dashboard/*.
// Неизвестные пути перенаправляются на /login.
func (h *APIHandler) Mount(router chi.Router, requireSession func(http.Handler) http.Handler) {
	router.Get("/health/live", h.health.HealthLive)
	router.Get("/health/ready", h.health.HealthReady)
	router.Get("/metrics", h.health.GetMetrics)

	router.Get("/login", h.LoginInfo)
	router.Post("/login", h.Login)
	router.Post("/validate-otp", h.ValidateOTP)
	router.Post("/logout", h.Logout)

	router.Route("/dashboard", func(r chi.Router) {
		r.Use(requireSession)

		// /dashboard и /dashboard/
		r.Get("/", redirectTo(documentsPath))

		r.Get("/documents", h.ListDocuments)
		r.Post("/documents/search", h.SearchDocuments)
		r.Post("/documents/refresh", h.RefreshDocuments)
		r.Get("/documents/archive", h.DownloadArchive)
		r.Post("/documents/archive/export", h.ExportArchive)
		r.Get("/documents/{n}/view", h.ViewDocument)
		r.Get("/documents/{n}/download", h.DownloadDocument)

		r.Get("/previews/{id}", h.ServePreview)
		r.Delete("/previews/{id}", h.ReleasePreview)

		r.Get("/tags", h.SuggestTags)
		r.Post("/upload", h.UploadDocument)
		r.Get("/upload/minor-heads", h.MinorHeads)
		r.Post("/create-user", h.CreateUser)
	})

	router.NotFound(redirectTo(loginPath))
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusFound)
	}
}
