// Package trace provides the logging subsystem for scrobvault.
//
// Events carry a level, a name and an optional detail message, and are
// fanned out to one or more sinks. The usual setup is a console sink plus a
// log file sink, each with its own level filter (see Setup); commands
// attach the resulting Tracer to their context so the rest of the pipeline
// can emit without threading an extra parameter everywhere.
//
// Emitting is goroutine-safe and best-effort: a failing sink never fails
// the operation being logged.
package trace
