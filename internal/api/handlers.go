package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectern/internal/deckservice"
	"github.com/starford/lectern/internal/manifest"
)

// Handler holds API route handlers.
type Handler struct {
	svc *deckservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *deckservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListPresentations handles GET /api/presentations.
//
//	@Summary		List discovered presentations
//	@Tags			presentations
//	@Produce		json
//	@Success		200	{object}	PresentationListResponse
//	@Security		BearerAuth
//	@Router			/presentations [get]
func (h *Handler) ListPresentations(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListPresentations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PresentationListResponse{Presentations: items, Total: len(items)})
}

// GetPresentation handles GET /api/presentations/{id}.
//
//	@Summary		Get a presentation with its resolved order and display mode
//	@Tags			presentations
//	@Produce		json
//	@Param			id	path		string	true	"Presentation id"
//	@Success		200	{object}	PresentationDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id} [get]
func (h *Handler) GetPresentation(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetPresentation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetOrder handles GET /api/presentations/{id}/order.
//
//	@Summary		Get the canonical navigation order
//	@Tags			presentations
//	@Produce		json
//	@Param			id	path	string	true	"Presentation id"
//	@Success		200	{array}	manifest.OrderedAsset
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/order [get]
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.ResolveOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// GetManifest handles GET /api/presentations/{id}/manifest.
//
//	@Summary		Get the manifest document in canonical form
//	@Tags			manifest
//	@Produce		json
//	@Param			id	path		string	true	"Presentation id"
//	@Success		200	{object}	manifest.Manifest
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/manifest [get]
func (h *Handler) GetManifest(w http.ResponseWriter, r *http.Request) {
	m, cs, err := h.svc.GetManifest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if cs != "" {
		w.Header().Set("ETag", `"`+cs+`"`)
	}
	writeJSON(w, http.StatusOK, m)
}

// PutManifest handles PUT /api/presentations/{id}/manifest.
//
//	@Summary		Replace the manifest document
//	@Tags			manifest
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Presentation id"
//	@Param			If-Match	header		string				false	"Manifest checksum for optimistic concurrency"
//	@Param			body		body		manifest.Manifest	true	"Candidate manifest"
//	@Success		200			{object}	manifest.Manifest
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/manifest [put]
func (h *Handler) PutManifest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var candidate manifest.Manifest
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)
	m, err := h.svc.PutManifest(r.Context(), chi.URLParam(r, "id"), &candidate, ifMatch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ValidateManifest handles POST /api/presentations/{id}/manifest/validate.
//
//	@Summary		Validate a candidate manifest without persisting it
//	@Tags			manifest
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Presentation id"
//	@Param			checkFiles	query		bool				false	"Run the filesystem pass"
//	@Param			body		body		manifest.Manifest	true	"Candidate manifest"
//	@Success		200			{object}	manifest.Result
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/manifest/validate [post]
func (h *Handler) ValidateManifest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var candidate manifest.Manifest
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	checkFiles := r.URL.Query().Get("checkFiles") == "true"
	res, err := h.svc.ValidateManifest(r.Context(), chi.URLParam(r, "id"), &candidate, checkFiles)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SyncManifest handles POST /api/presentations/{id}/sync.
//
//	@Summary		Reconcile the manifest against the files on disk
//	@Tags			sync
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Presentation id"
//	@Param			body	body		SyncRequest	true	"Sync options"
//	@Success		200		{object}	SyncResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/sync [post]
func (h *Handler) SyncManifest(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, report, err := h.svc.SyncManifest(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{Manifest: m, Report: report})
}

// SyncFromIndex handles POST /api/presentations/{id}/sync-index.
//
//	@Summary		Infer tabs, groups, and slides from index files
//	@Tags			sync
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Presentation id"
//	@Param			body	body		SyncFromIndexRequest	true	"Inference options"
//	@Success		200		{object}	SyncFromIndexResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/sync-index [post]
func (h *Handler) SyncFromIndex(w http.ResponseWriter, r *http.Request) {
	var req SyncFromIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, report, err := h.svc.SyncFromIndex(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SyncFromIndexResponse{Manifest: m, Report: report})
}

// ListTemplates handles GET /api/templates.
//
//	@Summary		List shared template documents
//	@Tags			templates
//	@Produce		json
//	@Success		200	{object}	TemplateListResponse
//	@Security		BearerAuth
//	@Router			/templates [get]
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.ListTemplates(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TemplateListResponse{Templates: ids})
}

// ApplyTemplate handles POST /api/presentations/{id}/template/{templateID}.
//
//	@Summary		Apply a shared template to a presentation
//	@Tags			templates
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string					true	"Presentation id"
//	@Param			templateID	path		string					true	"Template id"
//	@Param			body		body		ApplyTemplateRequest	true	"Merge mode"
//	@Success		200			{object}	manifest.Manifest
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/template/{templateID} [post]
func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req ApplyTemplateRequest
	if r.Body != nil {
		// An empty body means replace mode.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	m, err := h.svc.ApplyTemplate(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "templateID"), req.Merge)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
