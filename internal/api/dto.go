package api

import (
	"github.com/starford/lectern/internal/deckservice"
	"github.com/starford/lectern/internal/manifest"
	"github.com/starford/lectern/internal/models"
)

// PresentationListResponse wraps the library listing.
type PresentationListResponse struct {
	Presentations []models.Presentation `json:"presentations" validate:"required"`
	Total         int                   `json:"total" example:"12" validate:"required"`
}

// PresentationDetail is the full presentation read model (aliased from
// the domain layer).
type PresentationDetail = deckservice.PresentationDetail

// CreateTabRequest is the request body for creating a tab.
type CreateTabRequest struct {
	ID    string `json:"id" example:"workshop" validate:"required"`
	Label string `json:"label" example:"Workshop" validate:"required"`
}

// CreateGroupRequest is the request body for creating a group.
type CreateGroupRequest struct {
	ID    string `json:"id" example:"getting-started" validate:"required"`
	Label string `json:"label" example:"Getting Started"`
}

// ReorderRequest carries a full permutation of tab or group ids.
type ReorderRequest struct {
	Order []string `json:"order" validate:"required"`
}

// SetParentRequest is the request body for linking a group to a parent.
type SetParentRequest struct {
	Parent string `json:"parent" example:"workshop" validate:"required"`
}

// AddSlideRequest is the request body for adding a single slide.
type AddSlideRequest = manifest.Slide

// BulkAddSlidesRequest is the request body for the bulk slide endpoint.
type BulkAddSlidesRequest struct {
	Items   []manifest.Slide     `json:"items" validate:"required"`
	Options manifest.BulkOptions `json:"options"`
}

// BulkAddGroupsRequest is the request body for the bulk group endpoint.
type BulkAddGroupsRequest struct {
	Groups map[string]manifest.Group `json:"groups" validate:"required"`
	DryRun bool                      `json:"dryRun"`
}

// ApplyTemplateRequest selects the template and merge mode.
type ApplyTemplateRequest struct {
	Merge bool `json:"merge"`
}

// SyncRequest configures a filesystem reconciliation pass.
type SyncRequest = manifest.SyncOptions

// SyncFromIndexRequest configures an index inference pass.
type SyncFromIndexRequest = manifest.IndexSyncOptions

// SyncResponse pairs the updated manifest with the sync report.
type SyncResponse struct {
	Manifest *manifest.Manifest   `json:"manifest" validate:"required"`
	Report   *manifest.SyncReport `json:"report" validate:"required"`
}

// SyncFromIndexResponse pairs the updated manifest with the structured
// index inference report.
type SyncFromIndexResponse struct {
	Manifest *manifest.Manifest        `json:"manifest" validate:"required"`
	Report   *manifest.IndexSyncReport `json:"report" validate:"required"`
}

// TemplateListResponse lists the shared template ids.
type TemplateListResponse struct {
	Templates []string `json:"templates" validate:"required"`
}

// FileUploadResponse is returned after a successful slide file upload.
type FileUploadResponse struct {
	File string `json:"file" example:"intro-overview.html" validate:"required"`
	Size int64  `json:"size" example:"12345" validate:"required"`
	URL  string `json:"url" example:"/api/presentations/demo/files/intro-overview.html" validate:"required"`
}
