package model

import "time"

// Application status values as sent by the API.
const (
	ApplicationDraft            = "borrador"
	ApplicationInReview         = "en_revision"
	ApplicationPendingDocuments = "pendiente_documentos"
	ApplicationApproved         = "aprobada"
	ApplicationRejected         = "rechazada"
)

// Application is a visa application (solicitud) as listed on the dashboard.
type Application struct {
	ID            ID        `json:"id"`
	Reference     string    `json:"codigo"`
	VisaType      string    `json:"tipo_visa"`
	Status        string    `json:"estado"`
	Country       string    `json:"pais_destino"`
	ApplicantName string    `json:"solicitante"`
	AdvisorName   string    `json:"asesor"`
	Progress      int       `json:"progreso"`
	UpdatedAt     time.Time `json:"fecha_actualizacion"`
}

// StatusLabel returns a short English label for the application status.
func (a Application) StatusLabel() string {
	switch a.Status {
	case ApplicationDraft:
		return "draft"
	case ApplicationInReview:
		return "in review"
	case ApplicationPendingDocuments:
		return "documents pending"
	case ApplicationApproved:
		return "approved"
	case ApplicationRejected:
		return "rejected"
	default:
		return a.Status
	}
}

// ProgressRatio returns Progress clamped to [0, 1].
func (a Application) ProgressRatio() float64 {
	switch {
	case a.Progress <= 0:
		return 0
	case a.Progress >= 100:
		return 1
	default:
		return float64(a.Progress) / 100
	}
}
