// Package service provides business logic for the leads bounded context.
package service

import (
	"context"
	"errors"
	"fmt"

	"bdc_backend/internal/events"
	"bdc_backend/internal/leads/domain"
	"bdc_backend/internal/leads/repository"
	"bdc_backend/internal/leads/scoring"
	"bdc_backend/internal/leads/transport"
	"bdc_backend/platform/apperr"
	"bdc_backend/platform/logger"
	"bdc_backend/platform/phone"
	"bdc_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Service provides lead management operations.
type Service struct {
	repo   *repository.Repository
	scorer *scoring.Service
	bus    events.Bus
	log    *logger.Logger
	region string
}

// New creates a new leads service.
func New(repo *repository.Repository, scorer *scoring.Service, bus events.Bus, log *logger.Logger, region string) *Service {
	return &Service{repo: repo, scorer: scorer, bus: bus, log: log, region: region}
}

// Repository exposes the repository for cross-module activity recording.
func (s *Service) Repository() *repository.Repository {
	return s.repo
}

// Create registers a new lead, computes its initial derived state, and
// publishes LeadCreated for downstream enrollment.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest, performedBy *uuid.UUID) (transport.LeadResponse, error) {
	source := domain.Source(req.Source)
	if !domain.IsValidSource(source) {
		return transport.LeadResponse{}, apperr.Validation(fmt.Sprintf("unknown lead source %q", req.Source))
	}

	normalizedPhone := req.Phone
	if req.Phone != nil && *req.Phone != "" {
		p := phone.NormalizeE164(*req.Phone, s.region)
		normalizedPhone = &p
	}

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		FirstName:  sanitize.Text(req.FirstName),
		LastName:   sanitize.Text(req.LastName),
		Email:      req.Email,
		Phone:      normalizedPhone,
		Source:     source,
		Status:     domain.StatusNew,
		AssignedTo: req.AssignedTo,
		Notes:      sanitize.TextPtr(req.Notes),
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if err := s.repo.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:       lead.ID,
		ActivityType: "lead_created",
		Description:  fmt.Sprintf("Lead created from source: %s", source),
		PerformedBy:  performedBy,
	}); err != nil {
		return transport.LeadResponse{}, fmt.Errorf("record creation activity: %w", err)
	}

	if result, err := s.scorer.Recalculate(ctx, lead.ID); err != nil {
		s.log.Warn("initial rescore failed", "lead_id", lead.ID.String(), "error", err.Error())
	} else {
		lead.Score = result.Score
		lead.LifecycleStage = result.LifecycleStage
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Source:    string(source),
	})

	return toResponse(lead), nil
}

// Get returns a single lead.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, mapErr(err)
	}
	return toResponse(lead), nil
}

// List returns leads matching the filter, highest score first.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	filter := repository.ListFilter{
		Status:   domain.Status(req.Status),
		Stage:    domain.LifecycleStage(req.Stage),
		Source:   domain.Source(req.Source),
		MinScore: req.MinScore,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if req.AssignedTo != "" {
		id, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			return transport.LeadListResponse{}, apperr.Validation("invalid assignedTo filter")
		}
		filter.AssignedTo = &id
	}

	leads, err := s.repo.List(ctx, filter)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toResponse(lead))
	}
	return transport.LeadListResponse{Items: items, Total: len(items)}, nil
}

// Update modifies lead contact fields and re-derives score and stage.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, mapErr(err)
	}

	params := repository.UpdateLeadParams{
		FirstName:  lead.FirstName,
		LastName:   lead.LastName,
		Email:      lead.Email,
		Phone:      lead.Phone,
		Source:     lead.Source,
		AssignedTo: lead.AssignedTo,
		Notes:      lead.Notes,
	}
	if req.FirstName != nil {
		params.FirstName = sanitize.Text(*req.FirstName)
	}
	if req.LastName != nil {
		params.LastName = sanitize.Text(*req.LastName)
	}
	if req.Email != nil {
		params.Email = req.Email
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone, s.region)
		params.Phone = &normalized
	}
	if req.Source != nil {
		source := domain.Source(*req.Source)
		if !domain.IsValidSource(source) {
			return transport.LeadResponse{}, apperr.Validation(fmt.Sprintf("unknown lead source %q", *req.Source))
		}
		params.Source = source
	}
	if req.AssignedTo != nil {
		params.AssignedTo = req.AssignedTo
	}
	if req.Notes != nil {
		params.Notes = sanitize.TextPtr(req.Notes)
	}

	updated, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	// Contact completeness and source feed the score.
	if result, err := s.scorer.Recalculate(ctx, id); err == nil {
		updated.Score = result.Score
		updated.LifecycleStage = result.LifecycleStage
	}

	return toResponse(updated), nil
}

// ChangeStatus transitions the lead's pipeline status, records the change,
// re-derives state, and publishes LeadStatusChanged.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, req transport.ChangeStatusRequest, performedBy *uuid.UUID) (transport.LeadResponse, error) {
	newStatus := domain.Status(req.Status)
	if !domain.IsValidStatus(newStatus) {
		return transport.LeadResponse{}, apperr.Validation(fmt.Sprintf("unknown lead status %q", req.Status))
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, mapErr(err)
	}
	oldStatus := lead.Status
	if oldStatus == newStatus {
		return toResponse(lead), nil
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return transport.LeadResponse{}, err
	}

	if err := s.repo.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:       id,
		ActivityType: "status_changed",
		Description:  fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus),
		PerformedBy:  performedBy,
	}); err != nil {
		return transport.LeadResponse{}, fmt.Errorf("record status activity: %w", err)
	}

	result, err := s.scorer.Recalculate(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		Source:    string(lead.Source),
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
	})

	lead.Status = newStatus
	lead.Score = result.Score
	lead.LifecycleStage = result.LifecycleStage
	return toResponse(lead), nil
}

// LogCommunication records an interaction, touches the activity marker, and
// re-derives score and stage (communications move leads to engaged).
func (s *Service) LogCommunication(ctx context.Context, leadID uuid.UUID, req transport.LogCommunicationRequest, createdBy *uuid.UUID) (transport.CommunicationResponse, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		return transport.CommunicationResponse{}, mapErr(err)
	}

	comm, err := s.repo.CreateCommunication(ctx, repository.CreateCommunicationParams{
		LeadID:    leadID,
		Direction: req.Direction,
		Channel:   req.Channel,
		Subject:   req.Subject,
		Body:      sanitize.Text(req.Body),
		CreatedBy: createdBy,
	})
	if err != nil {
		return transport.CommunicationResponse{}, err
	}

	if err := s.repo.TouchActivity(ctx, leadID, comm.CreatedAt); err != nil {
		return transport.CommunicationResponse{}, err
	}
	if err := s.repo.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:       leadID,
		ActivityType: "communication_logged",
		Description:  fmt.Sprintf("%s %s logged", req.Direction, req.Channel),
		PerformedBy:  createdBy,
	}); err != nil {
		return transport.CommunicationResponse{}, fmt.Errorf("record communication activity: %w", err)
	}

	if _, err := s.scorer.Recalculate(ctx, leadID); err != nil {
		return transport.CommunicationResponse{}, err
	}

	return toCommunicationResponse(comm), nil
}

// ListCommunications returns a lead's logged interactions.
func (s *Service) ListCommunications(ctx context.Context, leadID uuid.UUID, limit int) ([]transport.CommunicationResponse, error) {
	comms, err := s.repo.ListCommunications(ctx, leadID, limit)
	if err != nil {
		return nil, err
	}
	items := make([]transport.CommunicationResponse, 0, len(comms))
	for _, c := range comms {
		items = append(items, toCommunicationResponse(c))
	}
	return items, nil
}

// ListActivities returns a lead's audit trail.
func (s *Service) ListActivities(ctx context.Context, leadID uuid.UUID, limit int) ([]transport.ActivityResponse, error) {
	activities, err := s.repo.ListActivities(ctx, leadID, limit)
	if err != nil {
		return nil, err
	}
	items := make([]transport.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		items = append(items, transport.ActivityResponse{
			ID:           a.ID,
			ActivityType: a.ActivityType,
			Description:  a.Description,
			PerformedBy:  a.PerformedBy,
			CreatedAt:    a.CreatedAt,
		})
	}
	return items, nil
}

// Recalculate forces a full score and lifecycle stage recomputation.
func (s *Service) Recalculate(ctx context.Context, leadID uuid.UUID) (*scoring.Result, error) {
	result, err := s.scorer.Recalculate(ctx, leadID)
	if err != nil {
		return nil, mapErr(err)
	}
	return result, nil
}

// Delete removes a lead and everything cascading from it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return mapErr(s.repo.Delete(ctx, id))
}

// mapErr converts repository sentinels to typed domain errors.
func mapErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

func toResponse(l repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:               l.ID,
		FirstName:        l.FirstName,
		LastName:         l.LastName,
		Email:            l.Email,
		Phone:            l.Phone,
		Source:           string(l.Source),
		Status:           string(l.Status),
		Score:            l.Score,
		LifecycleStage:   string(l.LifecycleStage),
		AssignedTo:       l.AssignedTo,
		Notes:            l.Notes,
		LastActivityDate: l.LastActivityDate,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func toCommunicationResponse(c repository.Communication) transport.CommunicationResponse {
	return transport.CommunicationResponse{
		ID:        c.ID,
		Direction: c.Direction,
		Channel:   c.Channel,
		Subject:   c.Subject,
		Body:      c.Body,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
	}
}
