//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd || windows)

package fileutil

import "os"

type nopLock struct{}

func (nopLock) Release() error {
	return nil
}

// NewLock is a no-op where no advisory locking is available.
func NewLock(_ *os.File) (Releaser, error) {
	return nopLock{}, nil
}
