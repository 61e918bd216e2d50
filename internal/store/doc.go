// Package store is the SQLite journal of vocabulary edits.
//
// Each model.Database gets a row in databases keyed by its token, and every
// successful AddElement, ReplaceVocabElement or RemoveVocabElement made
// through a Recorder appends one row to vocab_edits. A row carries the
// element as canonical JSON (ir.MarshalElement) together with the element's
// DB string and the last ID allocated after the edit.
//
// IDs are allocated deterministically, so Replay rebuilds an identical
// Database from the journal and checks each step against the recorded DB
// string.
//
// # Ordering
//
// Reads order by seq ASC. Wall-clock time is never stored.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - foreign_keys=ON: Edits must reference a known database
package store
