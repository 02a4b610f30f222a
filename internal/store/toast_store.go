package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/visadesk/internal/model"
)

// RecordToast appends a surfaced toast to the user's history. Recording
// the same toast twice keeps the first entry.
func (s *SQLiteStore) RecordToast(ctx context.Context, userID model.ID, t model.Toast) error {
	if userID == "" {
		return errors.New("recording toast: empty user id")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO toast_history (
			id, notification_id, user_id, kind, title, body, action_url, shown_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.NotificationID), string(userID), string(t.Kind),
		t.Title, t.Body, t.ActionURL, t.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording toast %s: %w", t.ID, err)
	}
	return nil
}

// RecentToasts returns up to limit history entries for the user, newest
// first. A non-positive limit returns everything.
func (s *SQLiteStore) RecentToasts(ctx context.Context, userID model.ID, limit int) ([]model.ShownToast, error) {
	query := `
		SELECT id, notification_id, user_id, kind, title, body, action_url, shown_at
		FROM toast_history
		WHERE user_id = ?
		ORDER BY shown_at DESC, id DESC`
	args := []any{string(userID)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var toasts []model.ShownToast
	if err := s.db.SelectContext(ctx, &toasts, query, args...); err != nil {
		return nil, fmt.Errorf("querying toast history: %w", err)
	}
	return toasts, nil
}

// PruneToasts keeps only the newest keep entries for the user and returns
// how many were deleted.
func (s *SQLiteStore) PruneToasts(ctx context.Context, userID model.ID, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM toast_history
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM toast_history
			WHERE user_id = ?
			ORDER BY shown_at DESC, id DESC
			LIMIT ?
		)`,
		string(userID), string(userID), keep,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning toast history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned toasts: %w", err)
	}
	return n, nil
}

// ClearToasts removes the user's whole history.
func (s *SQLiteStore) ClearToasts(ctx context.Context, userID model.ID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM toast_history WHERE user_id = ?", string(userID))
	if err != nil {
		return fmt.Errorf("clearing toast history: %w", err)
	}
	return nil
}

// UserHistory binds a Store to one user so it can serve as the
// notification store's history sink. Every recorded toast also trims the
// history to Limit entries.
type UserHistory struct {
	Store  Store
	UserID model.ID
	Limit  int
}

// RecordToast records t for the bound user.
func (h UserHistory) RecordToast(ctx context.Context, t model.Toast) error {
	if err := h.Store.RecordToast(ctx, h.UserID, t); err != nil {
		return err
	}
	if h.Limit > 0 {
		if _, err := h.Store.PruneToasts(ctx, h.UserID, h.Limit); err != nil {
			return err
		}
	}
	return nil
}
