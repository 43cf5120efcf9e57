//go:build !windows

package storage

func isEphemeralError(_ error) bool {
	return false
}
