// Package metrics defines the snapshot data model shared by the harvester,
// the time-series store, the process table and the dashboard.
//
// A Snapshot is built once per poll cycle and never modified after it is
// published. Every metric is wrapped in a Reading so that "this platform
// cannot report it", "the last probe failed" and "zero" stay distinct.
package metrics
