// Package proc spawns child processes with fully piped standard streams and
// explicit lifecycle control.
//
// A Handle owns at most one OS process together with the parent ends of the
// three pipes wired to the child's stdin, stdout and stderr. Spawning is
// all-or-nothing: either the caller receives a handle owning exactly those
// three descriptors, or every descriptor created along the way has been
// closed again and an error is returned.
//
// A handle must be released exactly one way: Wait or Kill (which reap the
// child and close the streams), Close (best-effort terminate, reap and
// close, never fails), or Detach followed by closing the streams. Callers
// that do not Detach should defer Close unconditionally; relying on garbage
// collection to clean up a live child leaks descriptors and leaves zombies.
//
// The package assumes a POSIX process model and does not build on Windows.
package proc
