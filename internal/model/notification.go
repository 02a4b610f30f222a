package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies what happened on the platform to produce a notification.
type Kind string

const (
	KindApplicationCreated   Kind = "solicitud_creada"
	KindApplicationApproved  Kind = "solicitud_aprobada"
	KindApplicationRejected  Kind = "solicitud_rechazada"
	KindAdvisorAssigned      Kind = "asesor_asignado"
	KindDocumentUploaded     Kind = "documento_subido"
	KindDocumentApproved     Kind = "documento_aprobado"
	KindDocumentRejected     Kind = "documento_rechazado"
	KindInterviewScheduled   Kind = "entrevista_programada"
	KindInterviewRescheduled Kind = "entrevista_reprogramada"
	KindInterviewCancelled   Kind = "entrevista_cancelada"
	KindInterviewReminder    Kind = "recordatorio_entrevista"
	KindSimulationProposed   Kind = "simulacion_propuesta"
	KindSimulationConfirmed  Kind = "simulacion_confirmada"
	KindSimulationCompleted  Kind = "simulacion_completada"
	KindRecommendations      Kind = "recomendaciones_listas"
	KindMessage              Kind = "mensaje"
)

// Category is the colour family a notification is displayed with.
type Category string

const (
	CategoryBlue   Category = "blue"
	CategoryGreen  Category = "green"
	CategoryRed    Category = "red"
	CategoryYellow Category = "yellow"
	CategoryOrange Category = "orange"
	CategoryPurple Category = "purple"
	CategoryGray   Category = "gray"
)

// FallbackIcon is shown for kinds the client does not know about.
const FallbackIcon = "🔔"

type appearance struct {
	icon     string
	category Category
}

var appearances = map[Kind]appearance{
	KindApplicationCreated:   {"📝", CategoryBlue},
	KindApplicationApproved:  {"✅", CategoryGreen},
	KindApplicationRejected:  {"❌", CategoryRed},
	KindAdvisorAssigned:      {"👤", CategoryPurple},
	KindDocumentUploaded:     {"📄", CategoryBlue},
	KindDocumentApproved:     {"📗", CategoryGreen},
	KindDocumentRejected:     {"📕", CategoryRed},
	KindInterviewScheduled:   {"📅", CategoryBlue},
	KindInterviewRescheduled: {"🔄", CategoryYellow},
	KindInterviewCancelled:   {"🚫", CategoryRed},
	KindInterviewReminder:    {"⏰", CategoryOrange},
	KindSimulationProposed:   {"🎯", CategoryPurple},
	KindSimulationConfirmed:  {"🤝", CategoryGreen},
	KindSimulationCompleted:  {"🏁", CategoryGreen},
	KindRecommendations:      {"💡", CategoryYellow},
	KindMessage:              {"💬", CategoryGray},
}

// Known reports whether k is part of the fixed kind enumeration.
func (k Kind) Known() bool {
	_, ok := appearances[k]
	return ok
}

// Appearance returns the icon and colour category for k. Unknown kinds
// resolve to the generic bell in gray.
func (k Kind) Appearance() (string, Category) {
	a, ok := appearances[k]
	if !ok {
		return FallbackIcon, CategoryGray
	}
	return a.icon, a.category
}

// ID is an opaque server-assigned identifier. The API sends either JSON
// numbers or strings; both decode to the same string form.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// Notification mirrors a server-owned notification record.
type Notification struct {
	// ID is stable across fetches.
	ID ID `json:"id"`

	Kind  Kind   `json:"tipo"`
	Title string `json:"titulo"`
	Body  string `json:"mensaje"`

	// ActionURL is the client route to open when the notification is
	// selected. Empty when the notification has no target.
	ActionURL string `json:"url_accion,omitempty"`

	CreatedAt time.Time `json:"fecha_creacion"`
	Read      bool      `json:"leida"`
}

// Icon returns the display icon for the notification's kind.
func (n Notification) Icon() string {
	icon, _ := n.Kind.Appearance()
	return icon
}

// Category returns the colour category for the notification's kind.
func (n Notification) Category() Category {
	_, c := n.Kind.Appearance()
	return c
}

// Toast is a transient, client-only pop-up derived from a notification
// the first time it is observed.
type Toast struct {
	ID             string
	NotificationID ID
	Kind           Kind
	Title          string
	Body           string
	Icon           string
	Category       Category
	ActionURL      string
	CreatedAt      time.Time
}

// ExpiredAt reports whether the toast has been displayed for at least d at now.
func (t Toast) ExpiredAt(now time.Time, d time.Duration) bool {
	return !now.Before(t.CreatedAt.Add(d))
}

// ShownToast is a toast recorded in the local history after it was
// surfaced to a user on this device.
type ShownToast struct {
	ID             string    `db:"id"`
	NotificationID ID        `db:"notification_id"`
	UserID         ID        `db:"user_id"`
	Kind           Kind      `db:"kind"`
	Title          string    `db:"title"`
	Body           string    `db:"body"`
	ActionURL      string    `db:"action_url"`
	ShownAt        time.Time `db:"shown_at"`
}

// Icon returns the display icon for the recorded kind.
func (s ShownToast) Icon() string {
	icon, _ := s.Kind.Appearance()
	return icon
}
