package testsupport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// ModManifest is the file that marks a folder as a loadable mod.
const ModManifest = "filelist.xml"

// WriteModFolder lays out root/name the way a downloaded workshop item looks
// on disk: a payload file of payloadSize bytes and, when withManifest is set,
// a filelist.xml naming the package. It returns the folder path.
func WriteModFolder(t testing.TB, root, name string, withManifest bool, payloadSize int64) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir mod %s: %v", dir, err)
	}
	if payloadSize > 0 {
		payload := bytes.Repeat([]byte{0x42}, int(payloadSize))
		if err := os.WriteFile(filepath.Join(dir, "payload.bin"), payload, 0o644); err != nil {
			t.Fatalf("write payload for %s: %v", name, err)
		}
	}
	if withManifest {
		manifest := fmt.Sprintf("<contentpackage name=%q/>\n", name)
		if err := os.WriteFile(filepath.Join(dir, ModManifest), []byte(manifest), 0o644); err != nil {
			t.Fatalf("write manifest for %s: %v", name, err)
		}
	}
	return dir
}
