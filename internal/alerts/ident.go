package alerts

import "strconv"

// Kind is the owning entity kind of a pending alert. It determines the
// identifier namespace, content template, and recurrence shape.
type Kind string

const (
	KindReminder Kind = "reminder"
	KindBirthday Kind = "birthday"
	KindMemorial Kind = "memorial"
	KindRitual   Kind = "ritual"
)

// Prefix is the identifier namespace for the kind. Enumerating pending alerts
// and matching on the prefix yields every alert of that kind.
func (k Kind) Prefix() string { return string(k) + "_" }

// Identifier derives the stable alert identifier for an annually recurring
// entity. Entity ids are globally unique, so identifiers never collide across
// entities.
func Identifier(kind Kind, entityID string) string {
	return kind.Prefix() + entityID
}

// WeekdayIdentifier derives the identifier for one weekday of a weekly
// recurrence. weekday uses the internal 0=Sunday..6=Saturday encoding. The
// (entity id, weekday) to identifier mapping is a bijection within a kind,
// which is what makes precise partial cancellation possible without tracking
// extra state.
func WeekdayIdentifier(kind Kind, entityID string, weekday int) string {
	return kind.Prefix() + entityID + "_" + strconv.Itoa(weekday)
}

// allWeekdayIdentifiers returns the full set of identifiers a weekly entity
// could ever occupy. Cancellation removes all of them; removing an identifier
// that was never scheduled is a no-op.
func allWeekdayIdentifiers(kind Kind, entityID string) []string {
	ids := make([]string, 0, 7)
	for d := 0; d <= 6; d++ {
		ids = append(ids, WeekdayIdentifier(kind, entityID, d))
	}
	return ids
}
