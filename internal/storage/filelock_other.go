//go:build !unix

package storage

// lockFile is a no-op where flock is unavailable; the in-process index mutex
// still serialises writers within one server.
func lockFile(string) (unlock func() error, err error) {
	return func() error { return nil }, nil
}
