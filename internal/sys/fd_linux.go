package sys

import (
	"errors"

	"golang.org/x/sys/unix"
)

// CloseOnExec marks every open descriptor numbered first or higher
// close-on-exec, including descriptors inherited without the flag.
func CloseOnExec(first int) error {
	err := unix.CloseRange(uint(first), ^uint(0), unix.CLOSE_RANGE_CLOEXEC)
	if err == nil {
		return nil
	}

	// Kernels before 5.11 lack the flag, before 5.9 the call.
	if !errors.Is(err, unix.ENOSYS) && !errors.Is(err, unix.EINVAL) {
		return err
	}

	return markCloseOnExec(first, "/proc/self/fd")
}
