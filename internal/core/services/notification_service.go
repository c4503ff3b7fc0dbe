package services

import (
	"context"
	"fmt"

	"microcredit-api/internal/adapters/email"
	"microcredit-api/internal/adapters/persistence/models"
	"microcredit-api/internal/core/domain"
	"microcredit-api/internal/pkg/logger"
	"microcredit-api/internal/pkg/metrics"

	"go.uber.org/zap"
)

var statusLabels = map[domain.ApplicationStatus]string{
	domain.StatusPending:  "Pendiente",
	domain.StatusInReview: "En revisión",
	domain.StatusApproved: "Aprobada",
	domain.StatusRejected: "Rechazada",
}

// NotificationService emails applicants about their applications
type NotificationService struct {
	sender EmailSender
	brand  string
}

// NewNotificationService creates a new notification service
func NewNotificationService(sender EmailSender, brand string) *NotificationService {
	return &NotificationService{sender: sender, brand: brand}
}

// NotifySubmitted confirms reception of a new application
func (s *NotificationService) NotifySubmitted(ctx context.Context, app *models.LoanApplication) {
	s.send(ctx, app, fmt.Sprintf("%s: solicitud recibida", s.brand), email.ApplicationMessage{
		Title: "Solicitud recibida",
		Body: fmt.Sprintf("Recibimos tu solicitud de préstamo por S/ %.2f a %d meses. Te avisaremos cuando sea evaluada.",
			app.FinancialInfo.LoanAmount, app.FinancialInfo.LoanTermMonths),
	})
}

// NotifyStatusChanged tells the applicant about a decision or review
func (s *NotificationService) NotifyStatusChanged(ctx context.Context, app *models.LoanApplication, remark string) {
	body := "El estado de tu solicitud ha cambiado."
	if remark != "" {
		body = fmt.Sprintf("%s Comentario: %s", body, remark)
	}
	s.send(ctx, app, fmt.Sprintf("%s: tu solicitud está %s", s.brand, statusLabels[app.Status]), email.ApplicationMessage{
		Title: "Actualización de tu solicitud",
		Body:  body,
	})
}

func (s *NotificationService) send(ctx context.Context, app *models.LoanApplication, subject string, msg email.ApplicationMessage) {
	to := app.ContactInfo.Email
	if s.sender == nil || to == "" {
		return
	}

	msg.Name = app.ApplicantName()
	msg.ApplicationID = app.ID
	msg.Status = statusLabels[app.Status]

	body, err := email.RenderApplication(msg)
	if err != nil {
		logger.Error(ctx, "failed to render notification", zap.String("application_id", app.ID), zap.Error(err))
		return
	}

	if err := s.sender.Send(ctx, to, subject, body); err != nil {
		metrics.EmailFailures.Inc()
		logger.Error(ctx, "failed to send notification",
			zap.String("application_id", app.ID),
			zap.String("to", to),
			zap.Error(err))
	}
}
