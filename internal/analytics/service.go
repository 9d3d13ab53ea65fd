package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	leadsdomain "bdc_backend/internal/leads/domain"
)

// funnelOrder is the pipeline progression shown on the dashboard.
var funnelOrder = []leadsdomain.LifecycleStage{
	leadsdomain.StageNew,
	leadsdomain.StageEngaged,
	leadsdomain.StageQualified,
	leadsdomain.StageOpportunity,
	leadsdomain.StageCustomer,
	leadsdomain.StageClosed,
}

type FunnelStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

type Dashboard struct {
	TotalLeads           int            `json:"totalLeads"`
	AverageScore         float64        `json:"averageScore"`
	NewLeadsLast7Days    int            `json:"newLeadsLast7Days"`
	LeadsByStatus        map[string]int `json:"leadsByStatus"`
	LeadsBySource        map[string]int `json:"leadsBySource"`
	Funnel               []FunnelStage  `json:"funnel"`
	AppointmentsByStatus map[string]int `json:"appointmentsByStatus"`
	OpenTasks            int            `json:"openTasks"`
	OverdueTasks         int            `json:"overdueTasks"`
}

type Service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Dashboard gathers all aggregates concurrently.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.now()

	var (
		totals    LeadTotals
		tasks     TaskTotals
		byStatus  []Bucket
		bySource  []Bucket
		byStage   []Bucket
		apptsBySt []Bucket
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.repo.LeadTotals(gctx, now.AddDate(0, 0, -7))
		return err
	})
	g.Go(func() (err error) {
		tasks, err = s.repo.TaskTotals(gctx, now)
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = s.repo.LeadsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		bySource, err = s.repo.LeadsBySource(gctx)
		return err
	})
	g.Go(func() (err error) {
		byStage, err = s.repo.LeadsByStage(gctx)
		return err
	})
	g.Go(func() (err error) {
		apptsBySt, err = s.repo.AppointmentsByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		TotalLeads:           totals.Total,
		AverageScore:         totals.AverageScore,
		NewLeadsLast7Days:    totals.CreatedSince,
		LeadsByStatus:        toMap(byStatus),
		LeadsBySource:        toMap(bySource),
		Funnel:               buildFunnel(byStage),
		AppointmentsByStatus: toMap(apptsBySt),
		OpenTasks:            tasks.Open,
		OverdueTasks:         tasks.Overdue,
	}, nil
}

func (s *Service) SequencePerformance(ctx context.Context) ([]SequencePerformance, error) {
	return s.repo.SequencePerformance(ctx)
}

func toMap(buckets []Bucket) map[string]int {
	out := make(map[string]int, len(buckets))
	for _, b := range buckets {
		out[b.Key] = b.Count
	}
	return out
}

// buildFunnel returns every pipeline stage in order, zero-filled for stages
// with no leads.
func buildFunnel(byStage []Bucket) []FunnelStage {
	counts := toMap(byStage)
	out := make([]FunnelStage, len(funnelOrder))
	for i, stage := range funnelOrder {
		out[i] = FunnelStage{Stage: string(stage), Count: counts[string(stage)]}
	}
	return out
}
