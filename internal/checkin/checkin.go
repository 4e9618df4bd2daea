package checkin

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"neksa/internal/model"
	"neksa/internal/repo"
	"neksa/internal/ticket"
)

// Store is the slice of the record store the state machine needs.
type Store interface {
	ConditionalSetAttended(ctx context.Context, registrationID, eventID int64) (int64, error)
	GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error)
}

// Code classifies the result of a scan. AlreadyCheckedIn is the expected
// outcome of a duplicate scan, not a fault.
type Code string

const (
	Accepted         Code = "accepted"
	MalformedPayload Code = "malformed_payload"
	UnknownTicket    Code = "unknown_ticket"
	WrongEvent       Code = "wrong_event"
	AlreadyCheckedIn Code = "already_checked_in"
)

// Outcome is the result of one scan. Registration is set when the scan was
// accepted and, best-effort, on AlreadyCheckedIn so the caller can still show
// who the ticket belongs to.
type Outcome struct {
	Code         Code                `json:"code"`
	Registration *model.Registration `json:"registration,omitempty"`
}

type Machine struct {
	store Store
	log   *zerolog.Logger
}

func NewMachine(store Store, log *zerolog.Logger) *Machine {
	return &Machine{store: store, log: log}
}

// Scan decides and performs the pending-to-attended transition for the ticket
// payload, scoped to eventID. The status flip is a single conditional write
// against the store, so two concurrent scans of the same ticket cannot both
// succeed no matter how many scanners run at once. The follow-up read only
// classifies a zero-row update for reporting; correctness never depends on it.
func (m *Machine) Scan(ctx context.Context, payload string, eventID int64) (Outcome, error) {
	id, err := ticket.Decode(payload)
	if err != nil {
		return Outcome{Code: MalformedPayload}, nil
	}

	affected, err := m.store.ConditionalSetAttended(ctx, id, eventID)
	if err != nil {
		return Outcome{}, fmt.Errorf("conditional check-in: %w", err)
	}
	if affected == 0 {
		return m.classify(ctx, id, eventID)
	}

	reg, err := m.store.GetRegistrationByID(ctx, id)
	if err != nil {
		return Outcome{}, fmt.Errorf("fetch checked-in registration: %w", err)
	}
	m.log.Info().
		Int64("registration_id", id).
		Int64("event_id", eventID).
		Msg("registration checked in")
	return Outcome{Code: Accepted, Registration: reg}, nil
}

func (m *Machine) classify(ctx context.Context, id, eventID int64) (Outcome, error) {
	reg, err := m.store.GetRegistrationByID(ctx, id)
	switch {
	case errors.Is(err, repo.ErrRegistrationNotFound):
		return Outcome{Code: UnknownTicket}, nil
	case err != nil:
		return Outcome{}, fmt.Errorf("classify rejected scan: %w", err)
	case reg.EventID != eventID:
		// Security-relevant: a globally valid ticket presented at the wrong
		// door. Logged apart from plain unknown tickets.
		m.log.Warn().
			Int64("registration_id", id).
			Int64("scanned_event_id", eventID).
			Int64("owning_event_id", reg.EventID).
			Msg("scan rejected: ticket belongs to another event")
		return Outcome{Code: WrongEvent}, nil
	default:
		return Outcome{Code: AlreadyCheckedIn, Registration: reg}, nil
	}
}
