package domain

import (
	"fmt"
	"net/mail"
	"time"
)

// Client is a tenant of the billing system.
type Client struct {
	ID         string
	Name       string
	Email      string
	Language   string
	CountryID  string
	IsArchived bool
	// RoomLimit is the room/seat restriction derived from the client's
	// active unit-based services.
	RoomLimit int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the client record.
func (c *Client) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: client name is required", ErrValidation)
	}
	if c.CountryID == "" {
		return fmt.Errorf("%w: client country is required", ErrValidation)
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return fmt.Errorf("%w: invalid email %q", ErrValidation, c.Email)
		}
	}
	return nil
}

// RecomputeRoomLimit sets RoomLimit from the client's services and reports
// whether it changed.
func (c *Client) RecomputeRoomLimit(services []*ClientService) bool {
	limit := 0
	for _, cs := range services {
		if cs.IsCurrent() && cs.ServiceType().IsUnitBased() {
			limit += cs.Quantity()
		}
	}
	if limit == c.RoomLimit {
		return false
	}
	c.RoomLimit = limit
	return true
}
