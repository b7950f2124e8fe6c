package sys

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Retry calls f until it returns something other than EINTR.
func Retry[T any](f func() (T, error)) (T, error) {
	for {
		v, err := f()
		if !errors.Is(err, unix.EINTR) {
			return v, err
		}
	}
}

// RetryErr is Retry for calls that only return an error.
func RetryErr(f func() error) error {
	_, err := Retry(func() (struct{}, error) {
		return struct{}{}, f()
	})

	return err
}
