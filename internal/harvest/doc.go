// Package harvest drives the platform probe on a fixed interval and
// publishes one immutable metrics.Snapshot per cycle.
//
// Each cycle moves through Idle, Polling, Normalizing and Publishing. All
// probe operations run in parallel and must finish before the next tick;
// a probe that is late or fails contributes its last good value marked
// stale. A probe that is still running from an earlier cycle is not
// started again. Metrics that keep failing are flagged degraded and
// re-probed with exponential backoff.
//
// Snapshots are handed to consumers through a Slot, a single-slot
// overwrite-latest channel: a slow consumer only ever misses intermediate
// snapshots, it never blocks the harvester.
package harvest
