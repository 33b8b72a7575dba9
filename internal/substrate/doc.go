// Package substrate implements the platform notification store: a durable
// set of pending timed alerts fired by an in-process cron engine.
//
// # Overview
//
// Add registers a repeating cron entry per pending alert and mirrors the
// alert into storage so a restart can rebuild the schedule. Remove drops the
// entry and the mirror row; removing an unknown identifier is a no-op.
// Pending returns a point-in-time snapshot.
//
// # Firing
//
// When an entry fires, the alert is queued for the delivery worker. The
// queue is bounded and drops with a warning when full; delivery is rate
// limited and failures are logged, never retried. The next registered firing
// of the same entry is the recovery path.
package substrate
