package domain

// LifecycleStage is the derived position of a lead in its funnel.
// It is never set directly; DeriveLifecycleStage is the single source
// of truth and is re-evaluated whenever status or engagement changes.
type LifecycleStage string

const (
	StageNew         LifecycleStage = "new"
	StageEngaged     LifecycleStage = "engaged"
	StageQualified   LifecycleStage = "qualified"
	StageOpportunity LifecycleStage = "opportunity"
	StageCustomer    LifecycleStage = "customer"
	StageClosed      LifecycleStage = "closed"
)

// DeriveLifecycleStage maps a lead's status and communication count to its
// lifecycle stage. Rules are evaluated top to bottom and the first match
// wins; reordering them changes behavior.
func DeriveLifecycleStage(status Status, communicationCount int) LifecycleStage {
	switch {
	case status == StatusClosedWon:
		return StageCustomer
	case status == StatusClosedLost:
		return StageClosed
	case status == StatusAppointmentSet || status == StatusAppointmentConfirmed:
		return StageOpportunity
	case status == StatusQualified:
		return StageQualified
	case communicationCount > 0:
		return StageEngaged
	default:
		return StageNew
	}
}
