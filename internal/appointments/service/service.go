// Package service implements appointment booking and its effect on the
// lead pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bdc_backend/internal/appointments/repository"
	"bdc_backend/internal/appointments/transport"
	leadsdomain "bdc_backend/internal/leads/domain"
	leadsrepo "bdc_backend/internal/leads/repository"
	"bdc_backend/internal/leads/scoring"
	"bdc_backend/platform/apperr"
	"bdc_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo   *repository.Repository
	leads  *leadsrepo.Repository
	scorer *scoring.Service
	log    *logger.Logger
}

func New(repo *repository.Repository, leads *leadsrepo.Repository, scorer *scoring.Service, log *logger.Logger) *Service {
	return &Service{repo: repo, leads: leads, scorer: scorer, log: log}
}

// Create books an appointment. Booking moves the lead to Appointment Set
// unless it already sits later in the pipeline, and recomputes the score.
func (s *Service) Create(ctx context.Context, req transport.CreateAppointmentRequest, performedBy *uuid.UUID) (transport.AppointmentResponse, error) {
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		return transport.AppointmentResponse{}, apperr.Validation("invalid lead ID")
	}
	lead, err := s.leads.GetByID(ctx, leadID)
	if errors.Is(err, leadsrepo.ErrNotFound) {
		return transport.AppointmentResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.AppointmentResponse{}, err
	}

	var userID *uuid.UUID
	if req.UserID != nil {
		id, err := uuid.Parse(*req.UserID)
		if err != nil {
			return transport.AppointmentResponse{}, apperr.Validation("invalid user ID")
		}
		userID = &id
	}

	appt, err := s.repo.Create(ctx, repository.CreateParams{
		LeadID:    leadID,
		UserID:    userID,
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	})
	if err != nil {
		return transport.AppointmentResponse{}, err
	}

	if err := s.leads.CreateActivity(ctx, leadsrepo.CreateActivityParams{
		LeadID:            leadID,
		ActivityType:      "appointment_scheduled",
		Description:       fmt.Sprintf("Appointment scheduled: %s", appt.Title),
		PerformedBy:       performedBy,
		RelatedEntityType: ptr("appointment"),
		RelatedEntityID:   &appt.ID,
	}); err != nil {
		return transport.AppointmentResponse{}, err
	}

	if shouldAdvanceOnBooking(lead.Status) {
		if err := s.leads.UpdateStatus(ctx, leadID, leadsdomain.StatusAppointmentSet); err != nil {
			return transport.AppointmentResponse{}, err
		}
	}
	if err := s.leads.TouchActivity(ctx, leadID, appt.CreatedAt); err != nil {
		return transport.AppointmentResponse{}, err
	}
	s.rescore(ctx, leadID)

	return toResponse(appt), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.AppointmentResponse, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.AppointmentResponse{}, s.mapErr(err)
	}
	return toResponse(appt), nil
}

func (s *Service) ListByLead(ctx context.Context, leadID uuid.UUID) ([]transport.AppointmentResponse, error) {
	list, err := s.repo.ListByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	return toResponses(list), nil
}

// ListUpcoming returns appointments in the next N days.
func (s *Service) ListUpcoming(ctx context.Context, days int, userID *uuid.UUID) ([]transport.AppointmentResponse, error) {
	if days <= 0 || days > 90 {
		days = 7
	}
	now := time.Now()
	list, err := s.repo.ListUpcoming(ctx, now, now.AddDate(0, 0, days), userID)
	if err != nil {
		return nil, err
	}
	return toResponses(list), nil
}

// ChangeStatus updates an appointment and mirrors the change onto the lead:
// confirmation advances the pipeline, completion and no-shows are recorded
// in the activity log.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, req transport.ChangeStatusRequest, performedBy *uuid.UUID) (transport.AppointmentResponse, error) {
	status := repository.Status(req.Status)
	if !repository.IsValidStatus(status) {
		return transport.AppointmentResponse{}, apperr.Validation(fmt.Sprintf("invalid appointment status: %s", req.Status))
	}

	appt, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return transport.AppointmentResponse{}, s.mapErr(err)
	}

	activity := ""
	switch status {
	case repository.StatusConfirmed:
		activity = "appointment_confirmed"
		lead, err := s.leads.GetByID(ctx, appt.LeadID)
		if err == nil && lead.Status == leadsdomain.StatusAppointmentSet {
			if err := s.leads.UpdateStatus(ctx, appt.LeadID, leadsdomain.StatusAppointmentConfirmed); err != nil {
				return transport.AppointmentResponse{}, err
			}
		}
	case repository.StatusCompleted:
		activity = "appointment_completed"
	case repository.StatusNoShow:
		activity = "appointment_no_show"
	case repository.StatusCancelled:
		activity = "appointment_cancelled"
	}

	if activity != "" {
		if err := s.leads.CreateActivity(ctx, leadsrepo.CreateActivityParams{
			LeadID:            appt.LeadID,
			ActivityType:      activity,
			Description:       fmt.Sprintf("Appointment %s: %s", status, appt.Title),
			PerformedBy:       performedBy,
			RelatedEntityType: ptr("appointment"),
			RelatedEntityID:   &appt.ID,
		}); err != nil {
			return transport.AppointmentResponse{}, err
		}
	}
	s.rescore(ctx, appt.LeadID)

	return toResponse(appt), nil
}

func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req transport.RescheduleRequest) (transport.AppointmentResponse, error) {
	appt, err := s.repo.Reschedule(ctx, id, req.StartTime, req.EndTime)
	if err != nil {
		return transport.AppointmentResponse{}, s.mapErr(err)
	}
	return toResponse(appt), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.mapErr(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapErr(err)
	}
	s.rescore(ctx, appt.LeadID)
	return nil
}

// shouldAdvanceOnBooking keeps leads already past Appointment Set at their
// current position.
func shouldAdvanceOnBooking(status leadsdomain.Status) bool {
	switch status {
	case leadsdomain.StatusAppointmentSet,
		leadsdomain.StatusAppointmentConfirmed,
		leadsdomain.StatusSold,
		leadsdomain.StatusClosedWon,
		leadsdomain.StatusClosedLost:
		return false
	}
	return true
}

// rescore failures never fail the booking; the nightly pass will catch up.
func (s *Service) rescore(ctx context.Context, leadID uuid.UUID) {
	if _, err := s.scorer.Recalculate(ctx, leadID); err != nil {
		s.log.Warn("rescore after appointment change failed",
			"lead_id", leadID.String(),
			"error", err.Error(),
		)
	}
}

func (s *Service) mapErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("appointment not found")
	}
	return err
}

func toResponse(a repository.Appointment) transport.AppointmentResponse {
	resp := transport.AppointmentResponse{
		ID:        a.ID.String(),
		LeadID:    a.LeadID.String(),
		Title:     a.Title,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Status:    string(a.Status),
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
	}
	if a.UserID != nil {
		id := a.UserID.String()
		resp.UserID = &id
	}
	return resp
}

func toResponses(list []repository.Appointment) []transport.AppointmentResponse {
	out := make([]transport.AppointmentResponse, len(list))
	for i, a := range list {
		out[i] = toResponse(a)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
