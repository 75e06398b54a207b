package periods

import (
	"fmt"
	"time"

	"github.com/genka-erp/genka-erp/internal/shared"
)

// Status enumerates fiscal period states.
type Status string

const (
	StatusOpen    Status = "open"
	StatusClosing Status = "closing"
	StatusClosed  Status = "closed"
)

// Period represents one fiscal (year, month) window.
type Period struct {
	ID        int64     `json:"id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Label renders the period as "38期 7月" style identifier without
// presentation strings leaking into the core.
func (p Period) Label() string {
	return fmt.Sprintf("%d-%02d", p.Year, p.Month)
}

// IsClosed reports whether persistent writes must be refused.
func (p Period) IsClosed() bool {
	return p.Status == StatusClosed
}

// ValidateTransition checks a status change against the period lifecycle:
// open → closing → closed, with closing able to fall back to open and a
// closed period reopenable only to closing.
func ValidateTransition(current, target Status) error {
	if current == target {
		return nil
	}
	switch current {
	case StatusOpen:
		if target == StatusClosing {
			return nil
		}
	case StatusClosing:
		if target == StatusOpen || target == StatusClosed {
			return nil
		}
	case StatusClosed:
		if target == StatusClosing {
			return nil
		}
	}
	return shared.ErrInvalidPeriodTransition
}
