package handshake

import (
	"fmt"

	"seahorse/internal/domain"
)

// Event is an action applied to a friend request record.
type Event uint8

const (
	EventAccept Event = iota + 1
	EventReject
	EventRemove
)

func (e Event) String() string {
	switch e {
	case EventAccept:
		return "accept"
	case EventReject:
		return "reject"
	case EventRemove:
		return "remove"
	default:
		return fmt.Sprintf("Event(%d)", uint8(e))
	}
}

// PairwiseKeyID returns the canonical id of the key shared by a and b.
func PairwiseKeyID(a, b domain.AccountID) domain.PairwiseKeyID {
	if b < a {
		a, b = b, a
	}
	return domain.PairwiseKeyID(a.String() + ":" + b.String())
}

// RequestID returns the id of the request sent by from to to.
func RequestID(from, to domain.AccountID) domain.RequestID {
	return domain.RequestID(from.String() + "-" + to.String())
}

// Transition applies ev to a record in status and returns the new status.
func Transition(status domain.RequestStatus, ev Event) (domain.RequestStatus, error) {
	switch status {
	case domain.StatusPending:
		switch ev {
		case EventAccept:
			return domain.StatusAccepted, nil
		case EventReject:
			return domain.StatusRejected, nil
		case EventRemove:
			return status, invalid(status, ev)
		}
	case domain.StatusAccepted:
		switch ev {
		case EventRemove:
			return domain.StatusRemoved, nil
		case EventAccept, EventReject:
			return status, invalid(status, ev)
		}
	case domain.StatusRejected, domain.StatusRemoved:
		return status, invalid(status, ev)
	}
	return status, fmt.Errorf("%w: unknown status %s or event %s", domain.ErrInvalidState, status, ev)
}

// Apply transitions r in place.
func Apply(r *domain.FriendRequest, ev Event) error {
	next, err := Transition(r.Status, ev)
	if err != nil {
		return fmt.Errorf("request %s: %w", RequestID(r.From, r.To), err)
	}
	r.Status = next
	return nil
}

// Counterparty returns the other side of r as seen by account, and whether
// account takes part in r at all.
func Counterparty(r domain.FriendRequest, account domain.AccountID) (domain.AccountID, bool) {
	switch account {
	case r.From:
		return r.To, true
	case r.To:
		return r.From, true
	default:
		return "", false
	}
}

func invalid(status domain.RequestStatus, ev Event) error {
	return fmt.Errorf("%w: cannot %s a %s request", domain.ErrInvalidState, ev, status)
}

// Involves reports whether account is either side of r.
func Involves(r domain.FriendRequest, account domain.AccountID) bool {
	return r.From == account || r.To == account
}
