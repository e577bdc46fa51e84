package catalog

import (
	"fmt"

	"github.com/starford/lectern/internal/models"
)

// Upsert replaces the cached row for one presentation together with
// its asset listing, inside a single transaction.
func (db *DB) Upsert(p models.Presentation, assets []models.Asset) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO presentations (id, title, slide_count, tab_count, group_count, has_manifest, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title        = excluded.title,
			slide_count  = excluded.slide_count,
			tab_count    = excluded.tab_count,
			group_count  = excluded.group_count,
			has_manifest = excluded.has_manifest,
			updated_at   = excluded.updated_at
	`, p.ID, p.Title, p.SlideCount, p.TabCount, p.GroupCount, p.HasManifest, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert presentation: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM assets WHERE presentation = ?`, p.ID); err != nil {
		return fmt.Errorf("catalog: clear assets: %w", err)
	}
	if len(assets) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO assets (presentation, file, is_index, size, updated_at) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("catalog: prepare asset insert: %w", err)
		}
		defer stmt.Close()
		for _, a := range assets {
			if _, err := stmt.Exec(p.ID, a.File, a.IsIndex, a.Size, a.UpdatedAt); err != nil {
				return fmt.Errorf("catalog: insert asset: %w", err)
			}
		}
	}
	return tx.Commit()
}

// Delete removes a presentation and its assets from the catalog.
func (db *DB) Delete(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM assets WHERE presentation = ?`, id)
	_, _ = tx.Exec(`DELETE FROM presentations WHERE id = ?`, id)
	return tx.Commit()
}

// List returns every cached presentation, sorted by id.
func (db *DB) List() ([]models.Presentation, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, slide_count, tab_count, group_count, has_manifest, updated_at
		FROM presentations ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var out []models.Presentation
	for rows.Next() {
		var p models.Presentation
		if err := rows.Scan(&p.ID, &p.Title, &p.SlideCount, &p.TabCount, &p.GroupCount, &p.HasManifest, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns one cached presentation, or false when uncached.
func (db *DB) Get(id string) (models.Presentation, bool, error) {
	var p models.Presentation
	err := db.conn.QueryRow(`
		SELECT id, title, slide_count, tab_count, group_count, has_manifest, updated_at
		FROM presentations WHERE id = ?
	`, id).Scan(&p.ID, &p.Title, &p.SlideCount, &p.TabCount, &p.GroupCount, &p.HasManifest, &p.UpdatedAt)
	if err != nil {
		return models.Presentation{}, false, nil
	}
	return p, true, nil
}

// AllIDs returns the set of cached presentation ids.
func (db *DB) AllIDs() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT id FROM presentations`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all ids: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}
