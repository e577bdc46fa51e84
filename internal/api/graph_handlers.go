package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lectern/internal/manifest"
)

// CreateTab handles POST /api/presentations/{id}/tabs.
//
//	@Summary		Create a tab
//	@Tags			tabs
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Presentation id"
//	@Param			body	body		CreateTabRequest	true	"Tab definition"
//	@Success		201		{object}	manifest.Manifest
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/tabs [post]
func (h *Handler) CreateTab(w http.ResponseWriter, r *http.Request) {
	var req CreateTabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, err := h.svc.CreateTab(r.Context(), chi.URLParam(r, "id"), req.ID, req.Label)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// UpdateTab handles PUT /api/presentations/{id}/tabs/{tabID}.
//
//	@Summary		Update a tab
//	@Tags			tabs
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Presentation id"
//	@Param			tabID	path		string				true	"Tab id"
//	@Param			body	body		manifest.TabPatch	true	"Fields to change"
//	@Success		200		{object}	manifest.Manifest
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/tabs/{tabID} [put]
func (h *Handler) UpdateTab(w http.ResponseWriter, r *http.Request) {
	var patch manifest.TabPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, err := h.svc.UpdateTab(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "tabID"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteTab handles DELETE /api/presentations/{id}/tabs/{tabID}.
//
//	@Summary		Delete a tab
//	@Tags			tabs
//	@Produce		json
//	@Param			id			path		string	true	"Presentation id"
//	@Param			tabID		path		string	true	"Tab id"
//	@Param			strategy	query		string	false	"orphan (default), cascade, or reparent:<tabId>"
//	@Success		200			{object}	manifest.Manifest
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/tabs/{tabID} [delete]
func (h *Handler) DeleteTab(w http.ResponseWriter, r *http.Request) {
	strategy := r.URL.Query().Get("strategy")
	m, err := h.svc.DeleteTab(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "tabID"), strategy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ReorderTabs handles PUT /api/presentations/{id}/tabs/order.
//
//	@Summary		Reorder tabs with a full permutation
//	@Tags			tabs
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Presentation id"
//	@Param			body	body		ReorderRequest	true	"Permutation of tab ids"
//	@Success		200		{object}	manifest.Manifest
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/tabs/order [put]
func (h *Handler) ReorderTabs(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, err := h.svc.ReorderTabs(r.Context(), chi.URLParam(r, "id"), req.Order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CreateGroup handles POST /api/presentations/{id}/groups.
//
//	@Summary		Create a group
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Presentation id"
//	@Param			body	body		CreateGroupRequest	true	"Group definition"
//	@Success		201		{object}	manifest.Manifest
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/groups [post]
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, err := h.svc.CreateGroup(r.Context(), chi.URLParam(r, "id"), req.ID, req.Label)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// UpdateGroup handles PUT /api/presentations/{id}/groups/{groupID}.
//
//	@Summary		Update a group
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Presentation id"
//	@Param			groupID	path		string				true	"Group id"
//	@Param			body	body		manifest.GroupPatch	true	"Fields to change"
//	@Success		200		{object}	manifest.Manifest
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/groups/{groupID} [put]
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var patch manifest.GroupPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, err := h.svc.UpdateGroup(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "groupID"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteGroup handles DELETE /api/presentations/{id}/groups/{groupID}.
//
//	@Summary		Delete a group; its slides revert to ungrouped
//	@Tags			groups
//	@Produce		json
//	@Param			id		path		string	true	"Presentation id"
//	@Param			groupID	path		string	true	"Group id"
//	@Success		200		{object}	manifest.Manifest
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/groups/{groupID} [delete]
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.DeleteGroup(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ReorderGroups handles PUT /api/presentations/{id}/groups/order.
//
//	@Summary		Reorder groups with a full permutation
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Presentation id"
//	@Param			body	body		ReorderRequest	true	"Permutation of group ids"
//	@Success		200		{object}	manifest.Manifest
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/groups/order [put]
func (h *Handler) ReorderGroups(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, err := h.svc.ReorderGroups(r.Context(), chi.URLParam(r, "id"), req.Order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// SetGroupParent handles PUT /api/presentations/{id}/groups/{groupID}/parent.
//
//	@Summary		Link a group to a parent group
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Presentation id"
//	@Param			groupID	path		string				true	"Group id"
//	@Param			body	body		SetParentRequest	true	"Parent group id"
//	@Success		200		{object}	manifest.Manifest
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/groups/{groupID}/parent [put]
func (h *Handler) SetGroupParent(w http.ResponseWriter, r *http.Request) {
	var req SetParentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, err := h.svc.SetGroupParent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "groupID"), req.Parent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// RemoveGroupParent handles DELETE /api/presentations/{id}/groups/{groupID}/parent.
//
//	@Summary		Clear a group's parent link
//	@Tags			groups
//	@Produce		json
//	@Param			id		path		string	true	"Presentation id"
//	@Param			groupID	path		string	true	"Group id"
//	@Success		200		{object}	manifest.Manifest
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/groups/{groupID}/parent [delete]
func (h *Handler) RemoveGroupParent(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.RemoveGroupParent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// AddSlide handles POST /api/presentations/{id}/slides.
//
//	@Summary		Add one slide entry
//	@Tags			slides
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Presentation id"
//	@Param			body	body		AddSlideRequest	true	"Slide entry"
//	@Success		201		{object}	manifest.Manifest
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/slides [post]
func (h *Handler) AddSlide(w http.ResponseWriter, r *http.Request) {
	var slide AddSlideRequest
	if err := json.NewDecoder(r.Body).Decode(&slide); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, err := h.svc.AddSlide(r.Context(), chi.URLParam(r, "id"), slide)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// UpdateSlide handles PUT /api/presentations/{id}/slides/{file}.
//
//	@Summary		Update one slide entry
//	@Tags			slides
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Presentation id"
//	@Param			file	path		string				true	"Slide file name"
//	@Param			body	body		manifest.SlidePatch	true	"Fields to change"
//	@Success		200		{object}	manifest.Manifest
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/slides/{file} [put]
func (h *Handler) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	var patch manifest.SlidePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, err := h.svc.UpdateSlide(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "file"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// RemoveSlide handles DELETE /api/presentations/{id}/slides/{file}.
//
//	@Summary		Remove one slide entry; the file stays on disk
//	@Tags			slides
//	@Produce		json
//	@Param			id		path		string	true	"Presentation id"
//	@Param			file	path		string	true	"Slide file name"
//	@Success		200		{object}	manifest.Manifest
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/slides/{file} [delete]
func (h *Handler) RemoveSlide(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.RemoveSlide(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "file"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// BulkAddSlides handles POST /api/presentations/{id}/slides/bulk.
//
//	@Summary		Add a batch of slides with conflict policies
//	@Tags			slides
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Presentation id"
//	@Param			body	body		BulkAddSlidesRequest	true	"Batch and options"
//	@Success		200		{object}	manifest.BulkResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/slides/bulk [post]
func (h *Handler) BulkAddSlides(w http.ResponseWriter, r *http.Request) {
	var req BulkAddSlidesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	result, err := h.svc.BulkAddSlides(r.Context(), chi.URLParam(r, "id"), req.Items, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// BulkAddGroups handles POST /api/presentations/{id}/groups/bulk.
//
//	@Summary		Add a batch of groups with per-item outcomes
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Presentation id"
//	@Param			body	body		BulkAddGroupsRequest	true	"Groups keyed by id"
//	@Success		200		{object}	manifest.BulkResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/presentations/{id}/groups/bulk [post]
func (h *Handler) BulkAddGroups(w http.ResponseWriter, r *http.Request) {
	var req BulkAddGroupsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	result, err := h.svc.BulkAddGroups(r.Context(), chi.URLParam(r, "id"), req.Groups, req.DryRun)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
