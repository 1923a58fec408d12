//go:build windows

package preflight

import "os"

// Windows has no access(2); probe by creating a file.
func checkReadWrite(path string) error {
	f, err := os.CreateTemp(path, ".workshopdl-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
