//go:build !linux

package sys

// CloseOnExec marks every open descriptor numbered first or higher
// close-on-exec, including descriptors inherited without the flag.
func CloseOnExec(first int) error {
	return markCloseOnExec(first, "/dev/fd")
}
