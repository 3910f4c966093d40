package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
	"github.com/appdotbuilder/helpdesk-system/internal/repository"
	apperrors "github.com/appdotbuilder/helpdesk-system/pkg/util"
)

// ReportService computes read-only derived views over ticket snapshots.
// Aggregations run in Go over rows read through the shared ticket filter;
// no locks are held across queries and no state is cached.
type ReportService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository, users repository.UserRepository, logger *zap.Logger) *ReportService {
	return &ReportService{tickets: tickets, users: users, logger: logger, now: time.Now}
}

// DashboardMetrics summarizes the current ticket population.
type DashboardMetrics struct {
	TotalTickets       int                         `json:"total_tickets"`
	ByStatus           map[domain.TicketStatus]int `json:"by_status"`
	ByTeam             map[domain.Role]int         `json:"by_team"`
	Unassigned         int                         `json:"unassigned"`
	Overdue            int                         `json:"overdue"`
	AvgResolutionHours float64                     `json:"avg_resolution_hours"`
	CreatedToday       int                         `json:"created_today"`
	ResolvedToday      int                         `json:"resolved_today"`
}

// UserDashboard summarizes one user's assigned workload.
type UserDashboard struct {
	UserID             int64                    `json:"user_id"`
	AssignedTickets    int                      `json:"assigned_tickets"`
	InProgress         int                      `json:"in_progress"`
	Solved             int                      `json:"solved"`
	AvgResolutionHours float64                  `json:"avg_resolution_hours"`
	RecentTickets      []domain.ComplaintTicket `json:"recent_tickets"`
}

// MonthlyReport aggregates tickets created within one calendar month.
type MonthlyReport struct {
	Year               int                           `json:"year"`
	Month              time.Month                    `json:"month"`
	Team               *domain.Role                  `json:"team,omitempty"`
	TotalTickets       int                           `json:"total_tickets"`
	ByStatus           map[domain.TicketStatus]int   `json:"by_status"`
	ResolutionRate     float64                       `json:"resolution_rate"`
	AvgResolutionHours float64                       `json:"avg_resolution_hours"`
	ByPriority         map[domain.TicketPriority]int `json:"by_priority"`
	ByCategory         map[domain.CustomerCategory]int `json:"by_category"`
}

// WorkloadStat aggregates one assignee's tickets within a date range.
type WorkloadStat struct {
	UserID             int64       `json:"user_id"`
	Username           string      `json:"username"`
	FullName           string      `json:"full_name"`
	Role               domain.Role `json:"role"`
	TicketsHandled     int         `json:"tickets_handled"`
	Resolved           int         `json:"resolved"`
	InProgress         int         `json:"in_progress"`
	AvgResolutionHours *float64    `json:"avg_resolution_hours"`
}

// IssueTypeBreakdown is one count+percentage slice of a breakdown family.
type IssueTypeBreakdown struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// IssueTypeAnalysis breaks tickets down by customer category and priority.
type IssueTypeAnalysis struct {
	ByCategory []IssueTypeBreakdown `json:"by_category"`
	ByPriority []IssueTypeBreakdown `json:"by_priority"`
}

// CustomerFrequency identifies repeat customers within a date range.
type CustomerFrequency struct {
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	TicketCount  int       `json:"ticket_count"`
	LastTicketAt time.Time `json:"last_ticket_at"`
}

// TeamPerformance aggregates per assigned team.
type TeamPerformance struct {
	Team               domain.Role `json:"team"`
	Total              int         `json:"total"`
	Resolved           int         `json:"resolved"`
	InProgress         int         `json:"in_progress"`
	Pending            int         `json:"pending"`
	ResolutionRate     float64     `json:"resolution_rate"`
	AvgResolutionHours *float64    `json:"avg_resolution_hours"`
	EfficiencyScore    *float64    `json:"efficiency_score"`
}

// GetDashboardMetrics computes the global dashboard. Status and team
// counts are zero-filled; overdue means High/Critical tickets older than
// 24 hours that are neither Solved nor Cancel.
func (s *ReportService) GetDashboardMetrics(ctx context.Context) (*DashboardMetrics, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	metrics := &DashboardMetrics{
		TotalTickets: len(tickets),
		ByStatus:     make(map[domain.TicketStatus]int, 5),
		ByTeam:       make(map[domain.Role]int, 3),
	}
	for _, status := range domain.TicketStatuses() {
		metrics.ByStatus[status] = 0
	}
	for _, role := range domain.Roles() {
		metrics.ByTeam[role] = 0
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	overdueCutoff := now.Add(-24 * time.Hour)

	var resolvedHours float64
	var resolvedCount int
	for _, t := range tickets {
		metrics.ByStatus[t.Status]++
		if t.AssignedTeam != nil {
			metrics.ByTeam[*t.AssignedTeam]++
		}
		if t.AssignedTo == nil {
			metrics.Unassigned++
		}
		if (t.IssuePriority == domain.TicketPriorityHigh || t.IssuePriority == domain.TicketPriorityCritical) &&
			t.CreatedAt.Before(overdueCutoff) &&
			t.Status != domain.TicketStatusSolved && t.Status != domain.TicketStatusCancel {
			metrics.Overdue++
		}
		if t.Status == domain.TicketStatusSolved && t.ResolvedAt != nil {
			resolvedHours += t.ResolvedAt.Sub(t.CreatedAt).Hours()
			resolvedCount++
		}
		if !t.CreatedAt.Before(dayStart) {
			metrics.CreatedToday++
		}
		if t.ResolvedAt != nil && !t.ResolvedAt.Before(dayStart) {
			metrics.ResolvedToday++
		}
	}
	if resolvedCount > 0 {
		metrics.AvgResolutionHours = resolvedHours / float64(resolvedCount)
	}
	return metrics, nil
}

// GetUserDashboard computes one user's workload view, including the 10
// most recently created tickets assigned to them.
func (s *ReportService) GetUserDashboard(ctx context.Context, userID int64) (*UserDashboard, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{AssignedTo: &userID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	dashboard := &UserDashboard{UserID: userID, AssignedTickets: len(tickets)}
	var resolvedHours float64
	var resolvedCount int
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusInProgress:
			dashboard.InProgress++
		case domain.TicketStatusSolved:
			dashboard.Solved++
		}
		if t.Status == domain.TicketStatusSolved && t.ResolvedAt != nil {
			resolvedHours += t.ResolvedAt.Sub(t.CreatedAt).Hours()
			resolvedCount++
		}
	}
	if resolvedCount > 0 {
		dashboard.AvgResolutionHours = resolvedHours / float64(resolvedCount)
	}

	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
	if len(tickets) > 10 {
		tickets = tickets[:10]
	}
	dashboard.RecentTickets = tickets
	return dashboard, nil
}

// GetMonthlyReport aggregates tickets created within the given calendar
// month, optionally restricted to one assigned team.
func (s *ReportService) GetMonthlyReport(ctx context.Context, year int, month time.Month, team *domain.Role) (*MonthlyReport, error) {
	if month < time.January || month > time.December || year < 1 {
		return nil, apperrors.NewInvalidArgument("invalid year or month",
			map[string]any{"year": year, "month": int(month)})
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		CreatedFrom:  &from,
		CreatedTo:    &to,
		AssignedTeam: team,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	report := &MonthlyReport{
		Year:         year,
		Month:        month,
		Team:         team,
		TotalTickets: len(tickets),
		ByStatus:     make(map[domain.TicketStatus]int, 5),
		ByPriority:   make(map[domain.TicketPriority]int),
		ByCategory:   make(map[domain.CustomerCategory]int),
	}
	for _, status := range domain.TicketStatuses() {
		report.ByStatus[status] = 0
	}

	var resolvedHours float64
	var resolvedCount int
	for _, t := range tickets {
		report.ByStatus[t.Status]++
		report.ByPriority[t.IssuePriority]++
		report.ByCategory[t.CustomerCategory]++
		if t.Status == domain.TicketStatusSolved && t.ResolvedAt != nil {
			resolvedHours += t.ResolvedAt.Sub(t.CreatedAt).Hours()
			resolvedCount++
		}
	}
	if len(tickets) > 0 {
		report.ResolutionRate = round2(float64(report.ByStatus[domain.TicketStatusSolved]) / float64(len(tickets)) * 100)
	}
	if resolvedCount > 0 {
		report.AvgResolutionHours = resolvedHours / float64(resolvedCount)
	}
	return report, nil
}

// GetWorkloadStats joins tickets in range to their assignees and
// aggregates per user, sorted by tickets handled descending.
func (s *ReportService) GetWorkloadStats(ctx context.Context, from, to time.Time, userID *int64, team *domain.Role) ([]WorkloadStat, error) {
	assigned := true
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		CreatedFrom:  &from,
		CreatedTo:    &to,
		AssignedTo:   userID,
		AssignedTeam: team,
		Assigned:     &assigned,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	type bucket struct {
		stat          WorkloadStat
		resolvedHours float64
		resolvedCount int
	}
	buckets := map[int64]*bucket{}
	for _, t := range tickets {
		if t.AssignedTo == nil {
			continue
		}
		b, ok := buckets[*t.AssignedTo]
		if !ok {
			b = &bucket{stat: WorkloadStat{UserID: *t.AssignedTo}}
			buckets[*t.AssignedTo] = b
		}
		b.stat.TicketsHandled++
		switch t.Status {
		case domain.TicketStatusSolved:
			b.stat.Resolved++
			if t.ResolvedAt != nil {
				b.resolvedHours += t.ResolvedAt.Sub(t.CreatedAt).Hours()
				b.resolvedCount++
			}
		case domain.TicketStatusInProgress:
			b.stat.InProgress++
		}
	}

	stats := make([]WorkloadStat, 0, len(buckets))
	for id, b := range buckets {
		if user, err := s.users.GetByID(ctx, id); err == nil {
			b.stat.Username = user.Username
			b.stat.FullName = user.FullName
			b.stat.Role = user.Role
		}
		if b.resolvedCount > 0 {
			avg := b.resolvedHours / float64(b.resolvedCount)
			b.stat.AvgResolutionHours = &avg
		}
		stats = append(stats, b.stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TicketsHandled != stats[j].TicketsHandled {
			return stats[i].TicketsHandled > stats[j].TicketsHandled
		}
		return stats[i].UserID < stats[j].UserID
	})
	return stats, nil
}

// GetIssueTypeAnalysis breaks tickets in range down by customer category
// and by priority, with percentages summing to 100 in each family.
func (s *ReportService) GetIssueTypeAnalysis(ctx context.Context, from, to time.Time) (*IssueTypeAnalysis, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		CreatedFrom: &from,
		CreatedTo:   &to,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	byCategory := map[string]int{}
	byPriority := map[string]int{}
	for _, t := range tickets {
		byCategory[string(t.CustomerCategory)]++
		byPriority[string(t.IssuePriority)]++
	}

	return &IssueTypeAnalysis{
		ByCategory: breakdown(byCategory, len(tickets)),
		ByPriority: breakdown(byPriority, len(tickets)),
	}, nil
}

// GetCustomerFrequency returns customers with more than one ticket in
// range, most frequent first.
func (s *ReportService) GetCustomerFrequency(ctx context.Context, from, to time.Time) ([]CustomerFrequency, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		CreatedFrom: &from,
		CreatedTo:   &to,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	type key struct{ id, name string }
	grouped := map[key]*CustomerFrequency{}
	for _, t := range tickets {
		k := key{t.CustomerID, t.CustomerName}
		entry, ok := grouped[k]
		if !ok {
			entry = &CustomerFrequency{CustomerID: t.CustomerID, CustomerName: t.CustomerName}
			grouped[k] = entry
		}
		entry.TicketCount++
		if t.CreatedAt.After(entry.LastTicketAt) {
			entry.LastTicketAt = t.CreatedAt
		}
	}

	result := []CustomerFrequency{}
	for _, entry := range grouped {
		if entry.TicketCount > 1 {
			result = append(result, *entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TicketCount != result[j].TicketCount {
			return result[i].TicketCount > result[j].TicketCount
		}
		return result[i].CustomerID < result[j].CustomerID
	})
	return result, nil
}

// GetTeamPerformance aggregates per assigned team; tickets without a team
// are excluded. Efficiency is resolved / (total * avgHours / 24), nil when
// no resolution-time data exists for the team.
func (s *ReportService) GetTeamPerformance(ctx context.Context, team *domain.Role, from, to *time.Time) ([]TeamPerformance, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		AssignedTeam: team,
		CreatedFrom:  from,
		CreatedTo:    to,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	type bucket struct {
		perf          TeamPerformance
		resolvedHours float64
		resolvedCount int
	}
	buckets := map[domain.Role]*bucket{}
	for _, t := range tickets {
		if t.AssignedTeam == nil {
			continue
		}
		b, ok := buckets[*t.AssignedTeam]
		if !ok {
			b = &bucket{perf: TeamPerformance{Team: *t.AssignedTeam}}
			buckets[*t.AssignedTeam] = b
		}
		b.perf.Total++
		switch t.Status {
		case domain.TicketStatusSolved:
			b.perf.Resolved++
			if t.ResolvedAt != nil {
				b.resolvedHours += t.ResolvedAt.Sub(t.CreatedAt).Hours()
				b.resolvedCount++
			}
		case domain.TicketStatusInProgress:
			b.perf.InProgress++
		case domain.TicketStatusPending:
			b.perf.Pending++
		}
	}

	result := make([]TeamPerformance, 0, len(buckets))
	for _, b := range buckets {
		if b.perf.Total > 0 {
			b.perf.ResolutionRate = round2(float64(b.perf.Resolved) / float64(b.perf.Total) * 100)
		}
		if b.resolvedCount > 0 {
			avg := b.resolvedHours / float64(b.resolvedCount)
			b.perf.AvgResolutionHours = &avg
			if avg > 0 {
				score := float64(b.perf.Resolved) / (float64(b.perf.Total) * avg / 24)
				b.perf.EfficiencyScore = &score
			}
		}
		result = append(result, b.perf)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Team < result[j].Team
	})
	return result, nil
}

// breakdown turns raw counts into count+percentage slices sorted by count
// descending. The largest slice absorbs rounding drift so each family sums
// to exactly 100.
func breakdown(counts map[string]int, total int) []IssueTypeBreakdown {
	result := []IssueTypeBreakdown{}
	if total == 0 {
		return result
	}
	for label, count := range counts {
		result = append(result, IssueTypeBreakdown{
			Label:      label,
			Count:      count,
			Percentage: round2(float64(count) / float64(total) * 100),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Label < result[j].Label
	})
	var sum float64
	for i := 1; i < len(result); i++ {
		sum += result[i].Percentage
	}
	if len(result) > 0 {
		result[0].Percentage = round2(100 - sum)
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
