// Package transport defines the HTTP request and response shapes for
// appointments.
package transport

import "time"

type CreateAppointmentRequest struct {
	LeadID    string     `json:"leadId" validate:"required,uuid"`
	UserID    *string    `json:"userId" validate:"omitempty,uuid"`
	Title     string     `json:"title" validate:"required,max=300"`
	StartTime time.Time  `json:"startTime" validate:"required"`
	EndTime   *time.Time `json:"endTime"`
	Notes     *string    `json:"notes" validate:"omitempty,max=2000"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled confirmed completed no_show cancelled"`
}

type RescheduleRequest struct {
	StartTime time.Time  `json:"startTime" validate:"required"`
	EndTime   *time.Time `json:"endTime"`
}

type AppointmentResponse struct {
	ID        string     `json:"id"`
	LeadID    string     `json:"leadId"`
	UserID    *string    `json:"userId,omitempty"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Status    string     `json:"status"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
