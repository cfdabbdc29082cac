// Package proctable maintains the process table and projects it into
// sorted, filtered, flat, grouped or tree-shaped views.
//
// Update diffs each cycle's process list against the previous one by pid
// (and create time, to catch reused pids) to derive CPU% and IO rates. A
// process seen for the first time reports CPU% as unavailable for one
// cycle. Processes are stored in a map keyed by pid; tree views resolve
// parents through that map, so a child whose parent has exited becomes an
// orphaned root instead of a dangling reference.
//
// A Table is not safe for concurrent use.
package proctable
