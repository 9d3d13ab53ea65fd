// Package domain provides core business rules for the leads bounded context.
package domain

// Source identifies where a lead entered the pipeline.
type Source string

const (
	SourceWebsite    Source = "Website"
	SourceReferral   Source = "Referral"
	SourceWalkIn     Source = "Walk-in"
	SourcePhone      Source = "Phone"
	SourceEmail      Source = "Email"
	SourceSocial     Source = "Social Media"
	SourceThirdParty Source = "Third Party"
)

// Status is the sales pipeline status of a lead.
type Status string

const (
	StatusNew                  Status = "New"
	StatusContacted            Status = "Contacted"
	StatusQualified            Status = "Qualified"
	StatusAppointmentSet       Status = "Appointment Set"
	StatusAppointmentConfirmed Status = "Appointment Confirmed"
	StatusSold                 Status = "Sold"
	StatusClosedWon            Status = "Closed Won"
	StatusClosedLost           Status = "Closed Lost"
)

var validStatuses = map[Status]bool{
	StatusNew:                  true,
	StatusContacted:            true,
	StatusQualified:            true,
	StatusAppointmentSet:       true,
	StatusAppointmentConfirmed: true,
	StatusSold:                 true,
	StatusClosedWon:            true,
	StatusClosedLost:           true,
}

var validSources = map[Source]bool{
	SourceWebsite:    true,
	SourceReferral:   true,
	SourceWalkIn:     true,
	SourcePhone:      true,
	SourceEmail:      true,
	SourceSocial:     true,
	SourceThirdParty: true,
}

// IsValidStatus reports whether status is a known pipeline status.
func IsValidStatus(status Status) bool {
	return validStatuses[status]
}

// IsValidSource reports whether source is a known lead source.
func IsValidSource(source Source) bool {
	return validSources[source]
}

// IsTerminalStatus returns true if no further outreach should target the lead.
func IsTerminalStatus(status Status) bool {
	return status == StatusClosedWon || status == StatusClosedLost
}
