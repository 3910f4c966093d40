package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
	"github.com/appdotbuilder/helpdesk-system/internal/service"
	apperrors "github.com/appdotbuilder/helpdesk-system/pkg/util"
)

// ReportsHandler exposes the reporting/dashboard aggregator.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Dashboard handles GET /reports/dashboard.
func (h *ReportsHandler) Dashboard(c *fiber.Ctx) error {
	metrics, err := h.reports.GetDashboardMetrics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics})
}

// UserDashboard handles GET /reports/dashboard/users/:id.
func (h *ReportsHandler) UserDashboard(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid user id", nil)
	}

	dashboard, err := h.reports.GetUserDashboard(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboard})
}

// Monthly handles GET /reports/monthly?year=&month=&team=.
func (h *ReportsHandler) Monthly(c *fiber.Ctx) error {
	year := c.QueryInt("year")
	month := c.QueryInt("month")
	team, err := parseTeamQuery(c)
	if err != nil {
		return err
	}

	report, err := h.reports.GetMonthlyReport(c.UserContext(), year, time.Month(month), team)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Workload handles GET /reports/workload?from=&to=&user=&team=.
func (h *ReportsHandler) Workload(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return err
	}
	team, err := parseTeamQuery(c)
	if err != nil {
		return err
	}
	var userID *int64
	if raw := c.Query("user"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid user", nil)
		}
		userID = &id
	}

	stats, err := h.reports.GetWorkloadStats(c.UserContext(), from, to, userID, team)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// IssueTypes handles GET /reports/issue-types?from=&to=.
func (h *ReportsHandler) IssueTypes(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return err
	}

	analysis, err := h.reports.GetIssueTypeAnalysis(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": analysis})
}

// FrequentCustomers handles GET /reports/customers/frequent?from=&to=.
func (h *ReportsHandler) FrequentCustomers(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return err
	}

	customers, err := h.reports.GetCustomerFrequency(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customers})
}

// TeamPerformance handles GET /reports/team-performance?team=&from=&to=.
func (h *ReportsHandler) TeamPerformance(c *fiber.Ctx) error {
	team, err := parseTeamQuery(c)
	if err != nil {
		return err
	}
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return apperrors.NewValidationError("invalid from date, expected YYYY-MM-DD", nil)
		}
		from = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return apperrors.NewValidationError("invalid to date, expected YYYY-MM-DD", nil)
		}
		end := parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}

	performance, err := h.reports.GetTeamPerformance(c.UserContext(), team, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": performance})
}

func parseTeamQuery(c *fiber.Ctx) (*domain.Role, error) {
	raw := c.Query("team")
	if raw == "" {
		return nil, nil
	}
	team, ok := domain.ParseRole(raw)
	if !ok {
		return nil, apperrors.NewInvalidArgument("unknown team", fiber.Map{"team": raw})
	}
	return &team, nil
}

func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("invalid from date, expected YYYY-MM-DD", nil)
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("invalid to date, expected YYYY-MM-DD", nil)
	}
	return from, to.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
