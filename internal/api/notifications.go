package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/visadesk/internal/model"
)

// ListUnreadNotifications returns the user's unread notifications in the
// order the API sends them.
func (c *Client) ListUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := c.Get(ctx, "/notificaciones/no-leidas/", &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var result struct {
		Count int `json:"count"`
	}
	if err := c.Get(ctx, "/notificaciones/no-leidas/count/", &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// MarkNotificationRead acknowledges a single notification.
func (c *Client) MarkNotificationRead(ctx context.Context, id model.ID) error {
	if id == "" {
		return fmt.Errorf("marking notification read: empty id")
	}
	path := fmt.Sprintf("/notificaciones/%s/leer/", url.PathEscape(string(id)))
	return c.Post(ctx, path, nil, nil)
}

// MarkAllNotificationsRead acknowledges every unread notification.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.Post(ctx, "/notificaciones/leer-todas/", nil, nil)
}
