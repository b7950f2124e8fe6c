// Package sys wraps the Unix primitives job control needs: terminal
// foreground ownership, non-blocking child status queries and retrying of
// interrupted system calls.
package sys
