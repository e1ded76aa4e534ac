package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tasbih/internal/model"
)

// AddCustomDhikr stores a user-authored dhikr. An empty ID is replaced with a
// new UUID and a zero CreatedAt with the current time. The stored entry is
// returned.
func (s *Store) AddCustomDhikr(ctx context.Context, c model.CustomDhikr) (model.CustomDhikr, error) {
	c.Phrase = strings.TrimSpace(c.Phrase)
	if c.Phrase == "" {
		return model.CustomDhikr{}, fmt.Errorf("custom dhikr: phrase is required")
	}
	if c.Count < 1 {
		return model.CustomDhikr{}, fmt.Errorf("custom dhikr: count must be at least 1, got %d", c.Count)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	if c.Category == "" {
		c.Category = model.CategoryGeneral
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO custom_dhikr (id, phrase, transliteration, translation, count, category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Phrase, c.Transliteration, c.Translation, c.Count, string(c.Category),
		c.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return model.CustomDhikr{}, err
	}
	return c, nil
}

// ListCustomDhikr returns custom entries oldest first.
func (s *Store) ListCustomDhikr(ctx context.Context) ([]model.CustomDhikr, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phrase, transliteration, translation, count, category, created_at
		 FROM custom_dhikr
		 ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var result []model.CustomDhikr
	for rows.Next() {
		var c model.CustomDhikr
		var category, createdAt string
		if err := rows.Scan(&c.ID, &c.Phrase, &c.Transliteration, &c.Translation, &c.Count, &category, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		c.Category = model.ParseCategory(category)
		c.CreatedAt = parsed
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteCustomDhikr removes a custom entry and its favorite mark.
func (s *Store) DeleteCustomDhikr(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM custom_dhikr WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: custom dhikr %q", ErrNotFound, id)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM favorites WHERE dhikr_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ToggleFavorite flips the favorite mark for a dhikr and reports the new state.
func (s *Store) ToggleFavorite(ctx context.Context, dhikrID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE dhikr_id = ?`, dhikrID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO favorites (dhikr_id, added_at) VALUES (?, ?)`,
		dhikrID, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListFavorites returns favorite dhikr IDs in the order they were added.
func (s *Store) ListFavorites(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT dhikr_id FROM favorites ORDER BY added_at ASC, dhikr_id ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
