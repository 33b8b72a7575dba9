// Package alerts turns reminders, memorial dates, and ritual reminders into
// pending platform alerts, and keeps that alert set consistent with user
// edits, toggles, and restart reconciliation.
//
// # Overview
//
// The Coordinator is the sole writer to the notification store. Every
// scheduling path runs through the same sequence: authorization gate, time
// and date parsing, weekday or annual trigger expansion, deterministic
// identifier derivation, then store adds. Edits are modeled as cancel-old
// then schedule-new; identifiers are derived from entity ids rather than
// content, so an edit recreates alerts under the same identifiers.
//
// # Identifiers
//
// Every pending alert carries an identifier of the form
//
//	<kind prefix><entity id>            annual recurrences
//	<kind prefix><entity id>_<weekday>  weekly recurrences (weekday 0=Sunday)
//
// Entity ids are globally unique, so identifiers never collide across
// entities; the weekday suffix keeps one entity's alerts apart. The per-kind
// prefix supports bulk enumeration and cancellation of a whole kind during a
// reschedule sweep.
//
// # Failure policy
//
// Operations never return errors. Each returns a Result whose Outcome says
// what happened (scheduled, skipped for permission, skipped for parse
// failure, store failure) so callers that care can surface it; nothing is
// retried and nothing blocks the caller's workflow. A failed add within a
// multi-weekday batch does not roll back its siblings.
package alerts
