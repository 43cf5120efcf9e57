package fileutil

// Releaser releases a file lock.
type Releaser interface {
	Release() error
}
