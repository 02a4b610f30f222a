package model

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// timestampLayouts are tried in order. Zone-less values are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseTimestamp decodes a server timestamp. Anything it cannot read
// becomes the zero time so one odd record never fails a whole list.
func parseTimestamp(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		if len(raw) > 0 && string(raw) != "null" {
			slog.Debug("Ignoring non-string timestamp", slog.String("value", string(raw)))
		}
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	slog.Debug("Ignoring unparseable timestamp", slog.String("value", s))
	return time.Time{}
}

// UnmarshalJSON decodes a notification, tolerating timestamp formats
// other than RFC 3339.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type plain Notification
	aux := struct {
		*plain
		CreatedAt json.RawMessage `json:"fecha_creacion"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.CreatedAt = parseTimestamp(aux.CreatedAt)
	return nil
}

// UnmarshalJSON decodes an application, tolerating timestamp formats
// other than RFC 3339.
func (a *Application) UnmarshalJSON(data []byte) error {
	type plain Application
	aux := struct {
		*plain
		UpdatedAt json.RawMessage `json:"fecha_actualizacion"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.UpdatedAt = parseTimestamp(aux.UpdatedAt)
	return nil
}
