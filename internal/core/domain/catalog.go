package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Catalog is the configured set of ticket statuses and priorities.
// Lookups are case-insensitive and return the configured spelling.
type Catalog struct {
	Statuses        []TicketStatus
	Priorities      []TicketPriority
	InitialStatus   TicketStatus
	AssignedStatus  TicketStatus
	DefaultPriority TicketPriority
}

// DefaultCatalog returns the built-in status and priority sets.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Statuses:        []TicketStatus{StatusNew, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed},
		Priorities:      []TicketPriority{PriorityLow, PriorityMedium, PriorityHigh},
		InitialStatus:   StatusNew,
		AssignedStatus:  StatusAssigned,
		DefaultPriority: PriorityMedium,
	}
}

// NewCatalog builds a catalog and checks that the special statuses and the
// default priority belong to their sets.
func NewCatalog(statuses, priorities []string, initial, assigned, defaultPriority string) (*Catalog, error) {
	if len(statuses) == 0 {
		return nil, errors.New("catalog: at least one status is required")
	}
	if len(priorities) == 0 {
		return nil, errors.New("catalog: at least one priority is required")
	}

	c := &Catalog{}
	for _, s := range statuses {
		c.Statuses = append(c.Statuses, TicketStatus(strings.TrimSpace(s)))
	}
	for _, p := range priorities {
		c.Priorities = append(c.Priorities, TicketPriority(strings.TrimSpace(p)))
	}

	if c.InitialStatus = c.CanonicalStatus(TicketStatus(initial)); c.InitialStatus == "" {
		return nil, fmt.Errorf("catalog: initial status %q is not in the status set", initial)
	}
	if c.AssignedStatus = c.CanonicalStatus(TicketStatus(assigned)); c.AssignedStatus == "" {
		return nil, fmt.Errorf("catalog: assigned status %q is not in the status set", assigned)
	}
	if c.DefaultPriority = c.CanonicalPriority(TicketPriority(defaultPriority)); c.DefaultPriority == "" {
		return nil, fmt.Errorf("catalog: default priority %q is not in the priority set", defaultPriority)
	}

	return c, nil
}

// CanonicalStatus returns the configured spelling of s, or "" if unknown.
func (c *Catalog) CanonicalStatus(s TicketStatus) TicketStatus {
	for _, known := range c.Statuses {
		if strings.EqualFold(string(known), strings.TrimSpace(string(s))) {
			return known
		}
	}
	return ""
}

// CanonicalPriority returns the configured spelling of p, or "" if unknown.
func (c *Catalog) CanonicalPriority(p TicketPriority) TicketPriority {
	for _, known := range c.Priorities {
		if strings.EqualFold(string(known), strings.TrimSpace(string(p))) {
			return known
		}
	}
	return ""
}

func (c *Catalog) HasStatus(s TicketStatus) bool {
	return c.CanonicalStatus(s) != ""
}

func (c *Catalog) HasPriority(p TicketPriority) bool {
	return c.CanonicalPriority(p) != ""
}

func (c *Catalog) StatusNames() []string {
	names := make([]string, len(c.Statuses))
	for i, s := range c.Statuses {
		names[i] = string(s)
	}
	return names
}

func (c *Catalog) PriorityNames() []string {
	names := make([]string, len(c.Priorities))
	for i, p := range c.Priorities {
		names[i] = string(p)
	}
	return names
}
