package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
	"github.com/appdotbuilder/helpdesk-system/internal/repository"
	apperrors "github.com/appdotbuilder/helpdesk-system/pkg/util"
)

func newReportService(tickets *mockTicketRepository, users *mockUserRepository) *ReportService {
	return NewReportService(tickets, users, zap.NewNop())
}

func fixedTicketList(tickets []domain.ComplaintTicket) *mockTicketRepository {
	return &mockTicketRepository{
		ListWithFilterFunc: func(ctx context.Context, filter repository.TicketFilter) ([]domain.ComplaintTicket, error) {
			return tickets, nil
		},
	}
}

func TestGetDashboardMetrics(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.Local)

	t.Run("empty population zero-fills breakdowns", func(t *testing.T) {
		svc := newReportService(fixedTicketList(nil), &mockUserRepository{})
		svc.now = func() time.Time { return now }

		metrics, err := svc.GetDashboardMetrics(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, metrics.TotalTickets)
		assert.Len(t, metrics.ByStatus, 5)
		assert.Len(t, metrics.ByTeam, 3)
		assert.Equal(t, 0, metrics.ByStatus[domain.TicketStatusPending])
		assert.Equal(t, 0, metrics.ByTeam[domain.RoleNOC])
		assert.Equal(t, 0.0, metrics.AvgResolutionHours)
	})

	t.Run("counts statuses teams overdue and today", func(t *testing.T) {
		noc := domain.RoleNOC
		assignee := int64(9)
		oldHigh := domain.ComplaintTicket{
			ID:            1,
			IssuePriority: domain.TicketPriorityHigh,
			Status:        domain.TicketStatusInProgress,
			AssignedTo:    &assignee,
			AssignedTeam:  &noc,
			CreatedAt:     now.Add(-48 * time.Hour),
		}
		resolvedAt := now.Add(-1 * time.Hour)
		solvedToday := domain.ComplaintTicket{
			ID:            2,
			IssuePriority: domain.TicketPriorityCritical,
			Status:        domain.TicketStatusSolved,
			CreatedAt:     now.Add(-25 * time.Hour),
			ResolvedAt:    &resolvedAt,
		}
		createdToday := domain.ComplaintTicket{
			ID:            3,
			IssuePriority: domain.TicketPriorityLow,
			Status:        domain.TicketStatusNew,
			CreatedAt:     now.Add(-2 * time.Hour),
		}

		svc := newReportService(fixedTicketList([]domain.ComplaintTicket{oldHigh, solvedToday, createdToday}), &mockUserRepository{})
		svc.now = func() time.Time { return now }

		metrics, err := svc.GetDashboardMetrics(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, metrics.TotalTickets)
		assert.Equal(t, 1, metrics.ByStatus[domain.TicketStatusInProgress])
		assert.Equal(t, 1, metrics.ByStatus[domain.TicketStatusSolved])
		assert.Equal(t, 1, metrics.ByTeam[domain.RoleNOC])
		assert.Equal(t, 2, metrics.Unassigned)
		// only the 48h-old High counts: the Critical one is Solved
		assert.Equal(t, 1, metrics.Overdue)
		assert.Equal(t, 1, metrics.CreatedToday)
		assert.Equal(t, 1, metrics.ResolvedToday)
		assert.InDelta(t, 24.0, metrics.AvgResolutionHours, 0.01)
	})
}

func TestGetUserDashboard(t *testing.T) {
	t.Run("unknown user is not found", func(t *testing.T) {
		users := &mockUserRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.User, error) {
				return nil, pgx.ErrNoRows
			},
		}
		svc := newReportService(fixedTicketList(nil), users)

		_, err := svc.GetUserDashboard(context.Background(), 404)
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})

	t.Run("recent tickets capped at ten newest first", func(t *testing.T) {
		base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		var tickets []domain.ComplaintTicket
		for i := 0; i < 12; i++ {
			tickets = append(tickets, domain.ComplaintTicket{
				ID:        int64(i + 1),
				Status:    domain.TicketStatusInProgress,
				CreatedAt: base.Add(time.Duration(i) * time.Hour),
			})
		}
		users := &mockUserRepository{
			GetByIDFunc: func(ctx context.Context, id int64) (*domain.User, error) {
				return &domain.User{ID: id, IsActive: true}, nil
			},
		}
		svc := newReportService(fixedTicketList(tickets), users)

		dashboard, err := svc.GetUserDashboard(context.Background(), 9)
		require.NoError(t, err)
		assert.Equal(t, 12, dashboard.AssignedTickets)
		assert.Equal(t, 12, dashboard.InProgress)
		require.Len(t, dashboard.RecentTickets, 10)
		assert.Equal(t, int64(12), dashboard.RecentTickets[0].ID)
		assert.Equal(t, int64(3), dashboard.RecentTickets[9].ID)
	})
}

func TestGetMonthlyReport(t *testing.T) {
	t.Run("invalid month is rejected", func(t *testing.T) {
		svc := newReportService(fixedTicketList(nil), &mockUserRepository{})

		_, err := svc.GetMonthlyReport(context.Background(), 2026, time.Month(13), nil)
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
	})

	t.Run("empty month yields zero totals and zero-filled statuses", func(t *testing.T) {
		svc := newReportService(fixedTicketList(nil), &mockUserRepository{})

		report, err := svc.GetMonthlyReport(context.Background(), 2026, time.February, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, report.TotalTickets)
		assert.Equal(t, 0.0, report.ResolutionRate)
		assert.Len(t, report.ByStatus, 5)
		assert.Empty(t, report.ByPriority)
		assert.Empty(t, report.ByCategory)
	})

	t.Run("resolution rate rounds to two decimals", func(t *testing.T) {
		created := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
		resolved := created.Add(6 * time.Hour)
		tickets := []domain.ComplaintTicket{
			{ID: 1, Status: domain.TicketStatusSolved, IssuePriority: domain.TicketPriorityHigh,
				CustomerCategory: domain.CategoryBroadband, CreatedAt: created, ResolvedAt: &resolved},
			{ID: 2, Status: domain.TicketStatusNew, IssuePriority: domain.TicketPriorityLow,
				CustomerCategory: domain.CategoryBroadband, CreatedAt: created},
			{ID: 3, Status: domain.TicketStatusPending, IssuePriority: domain.TicketPriorityLow,
				CustomerCategory: domain.CategoryReseller, CreatedAt: created},
		}
		svc := newReportService(fixedTicketList(tickets), &mockUserRepository{})

		report, err := svc.GetMonthlyReport(context.Background(), 2026, time.February, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, report.TotalTickets)
		assert.Equal(t, 33.33, report.ResolutionRate)
		assert.InDelta(t, 6.0, report.AvgResolutionHours, 0.01)
		assert.Equal(t, 2, report.ByCategory[domain.CategoryBroadband])
		assert.Equal(t, 2, report.ByPriority[domain.TicketPriorityLow])
	})
}

func TestGetWorkloadStats(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	userA := int64(3)
	userB := int64(7)
	created := from.Add(24 * time.Hour)
	resolved := created.Add(12 * time.Hour)
	tickets := []domain.ComplaintTicket{
		{ID: 1, AssignedTo: &userA, Status: domain.TicketStatusSolved, CreatedAt: created, ResolvedAt: &resolved},
		{ID: 2, AssignedTo: &userA, Status: domain.TicketStatusInProgress, CreatedAt: created},
		{ID: 3, AssignedTo: &userB, Status: domain.TicketStatusPending, CreatedAt: created},
	}
	users := &mockUserRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, Username: "agent", FullName: "Agent", Role: domain.RoleTSO, IsActive: true}, nil
		},
	}
	svc := newReportService(fixedTicketList(tickets), users)

	stats, err := svc.GetWorkloadStats(context.Background(), from, to, nil, nil)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// sorted by tickets handled descending
	assert.Equal(t, userA, stats[0].UserID)
	assert.Equal(t, 2, stats[0].TicketsHandled)
	assert.Equal(t, 1, stats[0].Resolved)
	assert.Equal(t, 1, stats[0].InProgress)
	require.NotNil(t, stats[0].AvgResolutionHours)
	assert.InDelta(t, 12.0, *stats[0].AvgResolutionHours, 0.01)

	assert.Equal(t, userB, stats[1].UserID)
	assert.Nil(t, stats[1].AvgResolutionHours)
}

func TestGetIssueTypeAnalysis(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	t.Run("empty range yields empty breakdowns", func(t *testing.T) {
		svc := newReportService(fixedTicketList(nil), &mockUserRepository{})

		analysis, err := svc.GetIssueTypeAnalysis(context.Background(), from, to)
		require.NoError(t, err)
		assert.Empty(t, analysis.ByCategory)
		assert.Empty(t, analysis.ByPriority)
	})

	t.Run("percentages sum to exactly one hundred", func(t *testing.T) {
		tickets := []domain.ComplaintTicket{
			{CustomerCategory: domain.CategoryBroadband, IssuePriority: domain.TicketPriorityLow},
			{CustomerCategory: domain.CategoryBroadband, IssuePriority: domain.TicketPriorityMedium},
			{CustomerCategory: domain.CategoryDedicated, IssuePriority: domain.TicketPriorityHigh},
		}
		svc := newReportService(fixedTicketList(tickets), &mockUserRepository{})

		analysis, err := svc.GetIssueTypeAnalysis(context.Background(), from, to)
		require.NoError(t, err)

		require.Len(t, analysis.ByCategory, 2)
		assert.Equal(t, "broadband", analysis.ByCategory[0].Label)
		assert.Equal(t, 2, analysis.ByCategory[0].Count)
		var sum float64
		for _, slice := range analysis.ByCategory {
			sum += slice.Percentage
		}
		assert.InDelta(t, 100.0, sum, 1e-9)

		require.Len(t, analysis.ByPriority, 3)
		sum = 0
		for _, slice := range analysis.ByPriority {
			sum += slice.Percentage
		}
		assert.InDelta(t, 100.0, sum, 1e-9)
	})
}

func TestGetCustomerFrequency(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	tickets := []domain.ComplaintTicket{
		{CustomerID: "C1", CustomerName: "Acme", CreatedAt: from.Add(1 * time.Hour)},
		{CustomerID: "C1", CustomerName: "Acme", CreatedAt: from.Add(5 * time.Hour)},
		{CustomerID: "C2", CustomerName: "Globex", CreatedAt: from.Add(2 * time.Hour)},
	}
	svc := newReportService(fixedTicketList(tickets), &mockUserRepository{})

	result, err := svc.GetCustomerFrequency(context.Background(), from, to)
	require.NoError(t, err)
	// single-ticket customers are filtered out
	require.Len(t, result, 1)
	assert.Equal(t, "C1", result[0].CustomerID)
	assert.Equal(t, 2, result[0].TicketCount)
	assert.True(t, result[0].LastTicketAt.Equal(from.Add(5*time.Hour)))
}

func TestGetTeamPerformance(t *testing.T) {
	cs := domain.RoleCS
	noc := domain.RoleNOC

	created := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)
	resolved := created.Add(12 * time.Hour)
	tickets := []domain.ComplaintTicket{
		{ID: 1, AssignedTeam: &cs, Status: domain.TicketStatusSolved, CreatedAt: created, ResolvedAt: &resolved},
		{ID: 2, AssignedTeam: &cs, Status: domain.TicketStatusPending, CreatedAt: created},
		{ID: 3, AssignedTeam: &noc, Status: domain.TicketStatusInProgress, CreatedAt: created},
		{ID: 4, Status: domain.TicketStatusNew, CreatedAt: created},
	}
	svc := newReportService(fixedTicketList(tickets), &mockUserRepository{})

	result, err := svc.GetTeamPerformance(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	// unassigned-team ticket is excluded; sorted by team name
	require.Len(t, result, 2)

	assert.Equal(t, domain.RoleCS, result[0].Team)
	assert.Equal(t, 2, result[0].Total)
	assert.Equal(t, 1, result[0].Resolved)
	assert.Equal(t, 1, result[0].Pending)
	assert.Equal(t, 50.0, result[0].ResolutionRate)
	require.NotNil(t, result[0].AvgResolutionHours)
	assert.InDelta(t, 12.0, *result[0].AvgResolutionHours, 0.01)
	require.NotNil(t, result[0].EfficiencyScore)
	// 1 resolved / (2 total * 12h / 24) = 1.0
	assert.InDelta(t, 1.0, *result[0].EfficiencyScore, 0.01)

	assert.Equal(t, domain.RoleNOC, result[1].Team)
	assert.Nil(t, result[1].AvgResolutionHours)
	assert.Nil(t, result[1].EfficiencyScore)
}
