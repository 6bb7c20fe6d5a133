//go:build !unix

package scan

func syncFilesystems() error {
	return nil
}
