package storage

// Package storage provides the persistence layer under the scheduler.
//
// It holds two things:
//   - Entity blobs: opaque serialized arrays (reminders, loved ones, rituals)
//     keyed by name, owned by the callers that load and save them.
//   - Pending alert rows: the durable mirror of the notification substrate's
//     pending set, so a restart can re-register every trigger.
