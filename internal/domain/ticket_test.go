package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTicketStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want TicketStatus
		ok   bool
	}{
		{"New", TicketStatusNew, true},
		{"In Progress", TicketStatusInProgress, true},
		{"Pending", TicketStatusPending, true},
		{"Cancel", TicketStatusCancel, true},
		{"Solved", TicketStatusSolved, true},
		{"solved", "", false},
		{"Closed", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseTicketStatus(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.raw)
		}
	}
}

func TestParseTicketPriority(t *testing.T) {
	cases := []struct {
		raw  string
		want TicketPriority
		ok   bool
	}{
		{"Low", TicketPriorityLow, true},
		{"Medium", TicketPriorityMedium, true},
		{"High", TicketPriorityHigh, true},
		{"Critical", TicketPriorityCritical, true},
		{"Urgent", "", false},
		{"low", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseTicketPriority(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.raw)
		}
	}
}

func TestParseCustomerCategory(t *testing.T) {
	cases := []struct {
		raw  string
		want CustomerCategory
		ok   bool
	}{
		{"broadband", CategoryBroadband, true},
		{"dedicated", CategoryDedicated, true},
		{"reseller", CategoryReseller, true},
		{"Broadband", "", false},
		{"enterprise", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseCustomerCategory(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.raw)
		}
	}
}
