package domain

import (
	"fmt"
	"strings"
	"time"
)

type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "Unread"
	NotificationRead   NotificationStatus = "Read"
)

// Signature is the deduplication key of a match notification: the role of
// the counterpart that triggered it and the blood group matched on.
type Signature struct {
	CounterpartRole Role
	BloodGroup      string
}

func (s Signature) String() string {
	return string(s.CounterpartRole) + ":" + s.BloodGroup
}

func ParseSignature(raw string) (Signature, error) {
	role, group, ok := strings.Cut(raw, ":")
	if !ok || group == "" || !Role(role).Valid() {
		return Signature{}, fmt.Errorf("malformed signature %q", raw)
	}
	return Signature{CounterpartRole: Role(role), BloodGroup: group}, nil
}

type Notification struct {
	ID        int64              `json:"id"`
	UserID    int64              `json:"user_id"`
	Message   string             `json:"message"`
	Status    NotificationStatus `json:"status"`
	Signature Signature          `json:"-"`
	CreatedAt time.Time          `json:"created_at"`
}
