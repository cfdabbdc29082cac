// Package app is the dashboard's application state machine.
//
// A State owns the widget layout, focus, per-widget selection and zoom, the
// process search, and the flags that shape what is drawn (help, freeze,
// expanded widget). It consumes input events one at a time through Handle
// and, each frame, assembles a read-only Frame from its own state plus
// queries against the time-series store and the process table. It never
// mutates either source; it only changes the parameters it queries them
// with.
//
// State is not safe for concurrent use. It lives on the render/input loop.
package app
