package domain

import "time"

// TicketStatus enumerates lifecycle states for complaint tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "New"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusCancel     TicketStatus = "Cancel"
	TicketStatusSolved     TicketStatus = "Solved"
)

// TicketStatuses lists every status in lifecycle order.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusNew,
		TicketStatusInProgress,
		TicketStatusPending,
		TicketStatusCancel,
		TicketStatusSolved,
	}
}

// ParseTicketStatus validates a raw status string.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch TicketStatus(raw) {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusPending, TicketStatusCancel, TicketStatusSolved:
		return TicketStatus(raw), true
	}
	return "", false
}

// TicketPriority enumerates issue urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// TicketPriorities lists every priority from least to most urgent.
func TicketPriorities() []TicketPriority {
	return []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical}
}

// ParseTicketPriority validates a raw priority string.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	switch TicketPriority(raw) {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return TicketPriority(raw), true
	}
	return "", false
}

// CustomerCategory enumerates the service classes customers subscribe to.
type CustomerCategory string

const (
	CategoryBroadband CustomerCategory = "broadband"
	CategoryDedicated CustomerCategory = "dedicated"
	CategoryReseller  CustomerCategory = "reseller"
)

// CustomerCategories lists every customer category.
func CustomerCategories() []CustomerCategory {
	return []CustomerCategory{CategoryBroadband, CategoryDedicated, CategoryReseller}
}

// ParseCustomerCategory validates a raw category string.
func ParseCustomerCategory(raw string) (CustomerCategory, bool) {
	switch CustomerCategory(raw) {
	case CategoryBroadband, CategoryDedicated, CategoryReseller:
		return CustomerCategory(raw), true
	}
	return "", false
}

// ComplaintTicket is the aggregate for customer complaints.
// ResolvedAt is non-nil exactly while Status is Solved.
type ComplaintTicket struct {
	ID               int64
	CustomerID       string
	CustomerName     string
	CustomerAddress  string
	CustomerCategory CustomerCategory
	IssueDescription string
	IssuePriority    TicketPriority
	Status           TicketStatus
	CreatedBy        int64
	AssignedTo       *int64
	AssignedTeam     *Role
	ResolutionNotes  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ResolvedAt       *time.Time
}
