package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// AllStatuses lists statuses in workflow order.
var AllStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	for _, candidate := range AllStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// AllPriorities lists priorities from lowest to highest.
var AllPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	for _, candidate := range AllPriorities {
		if p == candidate {
			return true
		}
	}
	return false
}

// StatusList renders the allowed statuses for error messages.
func StatusList() string {
	names := make([]string, len(AllStatuses))
	for i, s := range AllStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// PriorityList renders the allowed priorities for error messages.
func PriorityList() string {
	names := make([]string, len(AllPriorities))
	for i, p := range AllPriorities {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// Ticket is a trackable unit of work belonging to a project.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	ProjectID   int64
	AssigneeID  *int64
	Priority    TicketPriority
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketDetail is a ticket with its references resolved.
type TicketDetail struct {
	Ticket
	Project  *Project
	Assignee *User
}
