// Package store persists device-local data: the history of toasts shown
// to each user.
package store

import (
	"context"

	"github.com/nhle/visadesk/internal/model"
)

// Store defines the persistence interface for the local toast history.
type Store interface {
	RecordToast(ctx context.Context, userID model.ID, toast model.Toast) error
	RecentToasts(ctx context.Context, userID model.ID, limit int) ([]model.ShownToast, error)
	PruneToasts(ctx context.Context, userID model.ID, keep int) (int64, error)
	ClearToasts(ctx context.Context, userID model.ID) error
	Close() error
}
