package alerts

import (
	"context"
	"time"
)

// Category tags alert content so the activation consumer can route taps.
type Category string

const (
	CategoryReminder Category = "REMINDER"
	CategoryMemorial Category = "MEMORIAL"
	CategoryRitual   Category = "RITUAL"
)

// Content is what a delivered alert shows, plus an opaque payload carrying
// the owning entity id for tap-through routing.
type Content struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Category Category          `json:"category"`
	Payload  map[string]string `json:"payload,omitempty"`
}

// TriggerSpec describes one recurring trigger: weekly on a weekday at a time,
// or annually on a month/day at a time. All triggers repeat.
type TriggerSpec struct {
	// Weekday uses the platform's 1-based encoding (1=Sunday..7=Saturday).
	// Zero means the trigger is annual.
	Weekday int        `json:"weekday,omitempty"`
	Month   time.Month `json:"month,omitempty"`
	Day     int        `json:"day,omitempty"`
	Hour    int        `json:"hour"`
	Minute  int        `json:"minute"`
	Repeats bool       `json:"repeats"`
}

// Annual reports whether the trigger fires once per year on Month/Day.
func (t TriggerSpec) Annual() bool { return t.Weekday == 0 }

// PendingAlert is one alert sitting in the notification store.
type PendingAlert struct {
	Identifier string      `json:"identifier"`
	Trigger    TriggerSpec `json:"trigger"`
	Content    Content     `json:"content"`
}

// Store is the platform's durable queue of pending timed alerts. Add replaces
// any pending alert already registered under the same identifier; Remove of an
// unknown identifier is a no-op. Implementations must be safe for concurrent
// use.
type Store interface {
	Add(ctx context.Context, identifier string, trigger TriggerSpec, content Content) error
	Remove(ctx context.Context, identifiers []string) error
	Pending(ctx context.Context) ([]PendingAlert, error)
}

// AuthStatus is the platform authorization state for delivering alerts.
type AuthStatus int

const (
	AuthNotDetermined AuthStatus = iota
	AuthDenied
	AuthAuthorized
)

func (s AuthStatus) String() string {
	switch s {
	case AuthNotDetermined:
		return "not_determined"
	case AuthDenied:
		return "denied"
	case AuthAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Gate is the authorization boundary all scheduling passes through.
// Cancellation never consults it.
type Gate interface {
	Status(ctx context.Context) AuthStatus
	// Request prompts for authorization. Once a decision exists, repeated
	// calls return it without prompting again.
	Request(ctx context.Context) (bool, error)
}

// Outcome classifies what a coordinator operation did. Operations degrade to
// "no alert was created" instead of surfacing errors.
type Outcome int

const (
	// OutcomeScheduled means at least one alert was added.
	OutcomeScheduled Outcome = iota
	// OutcomeCanceled means the operation only removed alerts.
	OutcomeCanceled
	// OutcomeDisabled means the entity's enabled flag was off.
	OutcomeDisabled
	// OutcomePermissionDenied means authorization was missing or refused.
	OutcomePermissionDenied
	// OutcomeParseFailure means the entity's time or date text did not parse.
	OutcomeParseFailure
	// OutcomeStoreFailure means every attempted store add failed.
	OutcomeStoreFailure
	// OutcomeNothingToDo means the operation legally produced zero alerts,
	// e.g. an empty weekday selection or an unresolvable ritual date.
	OutcomeNothingToDo
)

func (o Outcome) String() string {
	switch o {
	case OutcomeScheduled:
		return "scheduled"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeDisabled:
		return "disabled"
	case OutcomePermissionDenied:
		return "permission_denied"
	case OutcomeParseFailure:
		return "parse_failure"
	case OutcomeStoreFailure:
		return "store_failure"
	case OutcomeNothingToDo:
		return "nothing_to_do"
	default:
		return "unknown"
	}
}

// Result reports one coordinator operation: its outcome plus how many store
// adds succeeded, how many identifiers were removed, and how many adds
// failed. Callers may ignore it entirely.
type Result struct {
	Outcome Outcome
	Added   int
	Removed int
	Failed  int
}
