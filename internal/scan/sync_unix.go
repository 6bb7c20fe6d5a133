//go:build unix

package scan

import "golang.org/x/sys/unix"

func syncFilesystems() error {
	unix.Sync()
	return nil
}
