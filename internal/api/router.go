package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectern/internal/deckservice"
	"github.com/starford/lectern/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *deckservice.Service, store storage.Provider, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	fh := NewFileHandler(store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Library.
	r.Get("/presentations", h.ListPresentations)
	r.Get("/presentations/{id}", h.GetPresentation)
	r.Get("/presentations/{id}/order", h.GetOrder)

	// Manifest document.
	r.Get("/presentations/{id}/manifest", h.GetManifest)
	r.Put("/presentations/{id}/manifest", h.PutManifest)
	r.Post("/presentations/{id}/manifest/validate", h.ValidateManifest)

	// Tabs. chi matches the static "order" segment before {tabID}.
	r.Post("/presentations/{id}/tabs", h.CreateTab)
	r.Put("/presentations/{id}/tabs/order", h.ReorderTabs)
	r.Put("/presentations/{id}/tabs/{tabID}", h.UpdateTab)
	r.Delete("/presentations/{id}/tabs/{tabID}", h.DeleteTab)

	// Groups.
	r.Post("/presentations/{id}/groups", h.CreateGroup)
	r.Post("/presentations/{id}/groups/bulk", h.BulkAddGroups)
	r.Put("/presentations/{id}/groups/order", h.ReorderGroups)
	r.Put("/presentations/{id}/groups/{groupID}", h.UpdateGroup)
	r.Delete("/presentations/{id}/groups/{groupID}", h.DeleteGroup)
	r.Put("/presentations/{id}/groups/{groupID}/parent", h.SetGroupParent)
	r.Delete("/presentations/{id}/groups/{groupID}/parent", h.RemoveGroupParent)

	// Slides.
	r.Post("/presentations/{id}/slides", h.AddSlide)
	r.Post("/presentations/{id}/slides/bulk", h.BulkAddSlides)
	r.Put("/presentations/{id}/slides/{file}", h.UpdateSlide)
	r.Delete("/presentations/{id}/slides/{file}", h.RemoveSlide)

	// Sync.
	r.Post("/presentations/{id}/sync", h.SyncManifest)
	r.Post("/presentations/{id}/sync-index", h.SyncFromIndex)

	// Templates.
	r.Get("/templates", h.ListTemplates)
	r.Post("/presentations/{id}/template/{templateID}", h.ApplyTemplate)

	// Slide files.
	r.Get("/presentations/{id}/files/{filename}", fh.ServeFile)
	r.Post("/presentations/{id}/files", fh.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
