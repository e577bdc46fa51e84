// Package models defines the domain types for Lectern.
package models

import "time"

// IndexFile is the entry document every presentation folder must contain.
const IndexFile = "index.html"

// Asset represents a physical HTML file inside a presentation folder.
type Asset struct {
	ID        string    `json:"id"`   // filename without extension
	File      string    `json:"file"` // filename with extension
	IsIndex   bool      `json:"is_index"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Presentation is a discovered folder of slide files under the library root.
type Presentation struct {
	ID          string    `json:"id"` // folder name
	Title       string    `json:"title"`
	SlideCount  int       `json:"slide_count"`
	TabCount    int       `json:"tab_count"`
	GroupCount  int       `json:"group_count"`
	HasManifest bool      `json:"has_manifest"`
	UpdatedAt   time.Time `json:"updated_at"`
}
