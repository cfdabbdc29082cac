// Package timeseries keeps bounded per-metric histories for graphing.
//
// Each metric key owns an independent ring of (time, value) points with
// strictly increasing timestamps. A point at or before the newest stored
// time is rejected. The oldest points are evicted once the key's retention
// count or age is exceeded.
//
// A Store is not safe for concurrent use. It is owned by the render loop,
// which feeds it snapshots and queries it while building frames.
package timeseries
