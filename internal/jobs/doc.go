// Package jobs holds the bookkeeping of an interactive shell's jobs.
//
// A Table indexes jobs by id, process groups by pgid and processes by pid.
// The three indexes reference each other by key rather than by pointer and
// are kept consistent by every mutating method. A Table is not safe for
// concurrent use; it is meant to be owned by a single goroutine.
package jobs
