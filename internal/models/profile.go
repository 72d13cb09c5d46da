package models

import (
	"fmt"
	"time"
)

// CallerID is the identity carried in the `uid` claim of a verified bearer token.
type CallerID int64

// Kind discriminates rider and driver profiles.
type Kind uint8

const (
	KindUser   Kind = 1
	KindDriver Kind = 2
)

// String returns the path/JSON form of the kind.
func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindDriver:
		return "driver"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindUser, KindDriver:
		return true
	default:
		return false
	}
}

// ParseKind maps "user" / "driver" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "user":
		return KindUser, nil
	case "driver":
		return KindDriver, nil
	default:
		return 0, fmt.Errorf("unknown profile kind %q", s)
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("invalid profile kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Profile is one person acting as a rider (KindUser) or a driver (KindDriver).
// An empty NationalID or Avatar means the value is absent.
type Profile struct {
	ID          int64     `json:"id"`
	UserID      CallerID  `json:"uid"`
	Kind        Kind      `json:"kind"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number"`
	NationalID  string    `json:"national_id,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Confirmed   bool      `json:"is_confirmed"`
	CreatedAt   time.Time `json:"register_date"`
	ModifiedAt  time.Time `json:"modification_date"`

	// ReviewRequestedAt is when the profile last asked for confirmation.
	// Decisions made before it are outdated.
	ReviewRequestedAt time.Time `json:"-"`
}
