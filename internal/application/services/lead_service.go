package services

import (
	"context"
	"strings"
	"time"

	"github.com/lannapoly/pathfinder-go/internal/domain/funnel"
	"github.com/lannapoly/pathfinder-go/internal/domain/scan"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/email"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/email/templates"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/observability/logging"
	"github.com/lannapoly/pathfinder-go/internal/infrastructure/persistence/docstore"
)

const leadsCollection = "leads"

// Lead is one admissions enquiry captured from the kiosk contact form.
type Lead struct {
	ID        string    `json:"id,omitempty"`
	SessionID string    `json:"sessionId"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Interest  string    `json:"interest,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LeadService stores admissions enquiries and notifies the admissions office.
// The email notification is best-effort; a mail outage never loses the lead.
type LeadService struct {
	writer   *docstore.ResilientWriter
	funnel   *FunnelService
	sessions *SessionService
	mailer   email.Service
	logger   *logging.ChanneledLogger
}

// NewLeadService creates the lead pipeline. mailer may be nil when no email
// provider is configured.
func NewLeadService(writer *docstore.ResilientWriter, funnelSvc *FunnelService, sessionSvc *SessionService, mailer email.Service, logger *logging.ChanneledLogger) *LeadService {
	return &LeadService{
		writer:   writer,
		funnel:   funnelSvc,
		sessions: sessionSvc,
		mailer:   mailer,
		logger:   logger,
	}
}

// CreateLead validates and stores one enquiry, advances the funnel, and
// notifies admissions.
func (s *LeadService) CreateLead(ctx context.Context, lead Lead) (Lead, error) {
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Phone = strings.TrimSpace(lead.Phone)
	if lead.Name == "" || lead.Phone == "" {
		return Lead{}, scan.ErrInvalidInput
	}
	lead.CreatedAt = time.Now().UTC()

	lead.ID = s.writer.Append(ctx, leadsCollection, lead)
	s.sessions.MarkLead(lead.SessionID)
	s.funnel.LogStep(ctx, funnel.StepFormFilled, lead.SessionID, map[string]any{
		"interest": lead.Interest,
	})

	s.logger.Analytics().Info("Lead captured",
		"sessionId", lead.SessionID,
		"interest", lead.Interest)

	if s.mailer != nil {
		go s.notify(lead)
	}
	return lead, nil
}

// notify sends the admissions email off the request path.
func (s *LeadService) notify(lead Lead) {
	err := s.mailer.SendLeadNotification(templates.LeadNotificationProps{
		Name:      lead.Name,
		Phone:     lead.Phone,
		Email:     lead.Email,
		Interest:  lead.Interest,
		Message:   lead.Message,
		SessionID: lead.SessionID,
	})
	if err != nil {
		s.logger.System().Error("Lead notification email failed",
			"sessionId", lead.SessionID,
			"error", err.Error())
		return
	}
	s.logger.System().Info("Lead notification email sent", "sessionId", lead.SessionID)
}

// RecentLeads returns the newest enquiries for the admin dashboard.
func (s *LeadService) RecentLeads(ctx context.Context, limit int) ([]Lead, error) {
	records, err := s.writer.Store().Read(ctx, leadsCollection, docstore.Query{Desc: true, Limit: limit})
	if err != nil {
		return nil, err
	}

	leads := make([]Lead, 0, len(records))
	for _, record := range records {
		var lead Lead
		if err := record.Decode(&lead); err != nil {
			s.logger.Analytics().Warn("Skipping malformed lead document", "documentId", record.ID, "error", err.Error())
			continue
		}
		lead.ID = record.ID
		leads = append(leads, lead)
	}
	return leads, nil
}
