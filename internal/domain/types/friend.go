package types

import (
	"encoding/json"
	"fmt"
)

// RequestStatus is the lifecycle state of a friend request record.
type RequestStatus uint8

const (
	StatusPending RequestStatus = iota + 1
	StatusAccepted
	StatusRejected
	StatusRemoved
)

// String returns the wire form of the status.
func (s RequestStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	case StatusRemoved:
		return "removed"
	default:
		return fmt.Sprintf("RequestStatus(%d)", uint8(s))
	}
}

// ParseRequestStatus maps the wire form back to a status.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch s {
	case "pending":
		return StatusPending, nil
	case "accepted":
		return StatusAccepted, nil
	case "rejected":
		return StatusRejected, nil
	case "removed":
		return StatusRemoved, nil
	default:
		return 0, fmt.Errorf("unknown request status %q", s)
	}
}

// MarshalJSON encodes the status as its lowercase name.
func (s RequestStatus) MarshalJSON() ([]byte, error) {
	if s < StatusPending || s > StatusRemoved {
		return nil, fmt.Errorf("invalid request status %d", uint8(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON rejects unknown status names.
func (s *RequestStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseRequestStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// FriendRequest is the registry record for one directed friend request.
//
// PublicKey and EncryptedKey are supplied by the initiator. RecipientKey and
// RecipientEncryptedKey are attached by the responder on accept.
type FriendRequest struct {
	From                  AccountID     `json:"from"`
	To                    AccountID     `json:"to"`
	PublicKey             string        `json:"publicKey"`
	EncryptedKey          string        `json:"encryptedKey"`
	RecipientKey          string        `json:"recipientKey,omitempty"`
	RecipientEncryptedKey string        `json:"recipientEncryptedKey,omitempty"`
	Status                RequestStatus `json:"status"`
}

// RequestFilter selects friend requests. Zero-valued fields match anything.
type RequestFilter struct {
	From      AccountID     `json:"from,omitempty"`
	To        AccountID     `json:"to,omitempty"`
	Involving AccountID     `json:"involving,omitempty"`
	Status    RequestStatus `json:"status,omitempty"`
}

// Match reports whether r satisfies the filter.
func (f RequestFilter) Match(r FriendRequest) bool {
	if f.From != "" && r.From != f.From {
		return false
	}
	if f.To != "" && r.To != f.To {
		return false
	}
	if f.Involving != "" && r.From != f.Involving && r.To != f.Involving {
		return false
	}
	if f.Status != 0 && r.Status != f.Status {
		return false
	}
	return true
}
