package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteStubSteamCMD writes a shell script into dir that mimics a SteamCMD
// workshop download: it creates
// <root>/steamapps/workshop/content/<game>/<item>/filelist.xml and prints a
// success line. Items listed in failing print an "ERROR!" line instead.
// A +force_install_dir argument overrides root.
func WriteStubSteamCMD(t testing.TB, dir, root string, failing ...string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir stub dir: %v", err)
	}
	script := fmt.Sprintf(`#!/bin/sh
root=%q
failing=%q
while [ $# -gt 0 ]; do
  case "$1" in
    +force_install_dir) root="$2"; shift 2 ;;
    +workshop_download_item) game="$2"; item="$3"; shift 3 ;;
    *) shift ;;
  esac
done
echo "Loading Steam API...OK"
for f in $failing; do
  if [ "$f" = "$item" ]; then
    echo "ERROR! Download item $item failed (Failure)."
    exit 0
  fi
done
target="$root/steamapps/workshop/content/$game/$item"
mkdir -p "$target"
echo "<contentpackage name=\"$item\"/>" > "$target/filelist.xml"
echo "Success. Downloaded item $item to \"$target\" (1024 bytes)"
`, root, strings.Join(failing, " "))

	target := filepath.Join(dir, "steamcmd")
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub steamcmd: %v", err)
	}
	return target
}
