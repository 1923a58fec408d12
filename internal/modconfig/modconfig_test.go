package modconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"workshopdl/internal/modconfig"
	"workshopdl/internal/services"
	"workshopdl/internal/testsupport"
)

const sampleConfig = `<?xml version="1.0" encoding="utf-8"?>
<config language="English" verboselogging="false">
  <!-- player settings -->
  <contentpackages>
    <core name="Vanilla" path="Content/ContentPackages/Vanilla.xml" />
    <regularpackages>
      <package path="LocalMods/old1/filelist.xml" />
      <package path="LocalMods/old2/filelist.xml" />
      <package path="LocalMods/old3/filelist.xml" />
    </regularpackages>
  </contentpackages>
  <graphicsmode width="1920" height="1080" />
</config>
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config_player.xml")
	if err := os.WriteFile(path, []byte(body), 0o640); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestPackagePath(t *testing.T) {
	if got := modconfig.PackagePath("111"); got != "LocalMods/111/filelist.xml" {
		t.Fatalf("PackagePath = %q", got)
	}
	got := modconfig.PackagePathsForItems([]string{"222", "111", "222"})
	want := []string{"LocalMods/222/filelist.xml", "LocalMods/111/filelist.xml", "LocalMods/222/filelist.xml"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PackagePathsForItems = %v, want %v", got, want)
	}
}

func TestWritePackagesReplacesChildrenInOrder(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	want := []string{"LocalMods/111/filelist.xml", "LocalMods/222/filelist.xml"}

	removed, err := modconfig.WritePackages(path, want)
	if err != nil {
		t.Fatalf("WritePackages: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	got, err := modconfig.ReadPackages(path)
	if err != nil {
		t.Fatalf("ReadPackages: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("packages = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	for _, keep := range []string{`<?xml version="1.0" encoding="utf-8"?>`, `language="English"`, "<!-- player settings -->", `<core name="Vanilla"`, `<graphicsmode width="1920" height="1080"/>`} {
		if !strings.Contains(body, keep) {
			t.Fatalf("expected %q to survive the rewrite:\n%s", keep, body)
		}
	}
	if strings.Contains(body, "old1") {
		t.Fatalf("old packages should be gone:\n%s", body)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("expected file mode preserved, got %o", info.Mode().Perm())
	}
}

func TestWritePackagesIsIdempotent(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	paths := []string{"LocalMods/111/filelist.xml", "LocalMods/222/filelist.xml"}

	if _, err := modconfig.WritePackages(path, paths); err != nil {
		t.Fatalf("first write: %v", err)
	}
	first, _ := os.ReadFile(path)
	removed, err := modconfig.WritePackages(path, paths)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	second, _ := os.ReadFile(path)
	if removed != 2 {
		t.Fatalf("second write removed %d, want 2", removed)
	}
	if string(first) != string(second) {
		t.Fatalf("rewrite changed document:\n%s\n---\n%s", first, second)
	}
}

func TestWritePackagesEmptyList(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	if _, err := modconfig.WritePackages(path, nil); err != nil {
		t.Fatalf("WritePackages: %v", err)
	}
	got, err := modconfig.ReadPackages(path)
	if err != nil {
		t.Fatalf("ReadPackages: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty package list, got %v", got)
	}
}

func TestWritePackagesMissingStructure(t *testing.T) {
	path := writeConfig(t, `<config><contentpackages><core/></contentpackages></config>`)
	before, _ := os.ReadFile(path)

	_, err := modconfig.WritePackages(path, []string{"LocalMods/1/filelist.xml"})
	if !errors.Is(err, services.ErrConfigStructure) {
		t.Fatalf("expected ErrConfigStructure, got %v", err)
	}
	if !strings.Contains(err.Error(), path) || !strings.Contains(err.Error(), modconfig.PackageListPath) {
		t.Fatalf("expected file and element path in error, got %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatal("file must be untouched when the structure is missing")
	}
}

func TestWritePackagesUnparsableAndMissingFiles(t *testing.T) {
	broken := writeConfig(t, `<config><contentpackages>`)
	if _, err := modconfig.WritePackages(broken, nil); !errors.Is(err, services.ErrConfigStructure) {
		t.Fatalf("expected ErrConfigStructure for unparsable XML, got %v", err)
	}
	missing := filepath.Join(t.TempDir(), "absent.xml")
	if _, err := modconfig.WritePackages(missing, nil); !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected ErrFilesystem for missing file, got %v", err)
	}
}

func TestScanModFolderKeepsOnlyPackagesInNameOrder(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteModFolder(t, root, "B", true, 0)
	testsupport.WriteModFolder(t, root, "A", true, 0)
	testsupport.WriteModFolder(t, root, "Empty", false, 32)
	if err := os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A directory named like the manifest is not a package.
	if err := os.MkdirAll(filepath.Join(root, "Weird", modconfig.ManifestName), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := modconfig.ScanModFolder(root)
	if err != nil {
		t.Fatalf("ScanModFolder: %v", err)
	}
	want := []string{"LocalMods/A/filelist.xml", "LocalMods/B/filelist.xml"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ScanModFolder = %v, want %v", got, want)
	}
}

func TestScanModFolderMissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := modconfig.ScanModFolder(missing)
	if !errors.Is(err, services.ErrFilesystem) || !strings.Contains(err.Error(), missing) {
		t.Fatalf("expected ErrFilesystem naming the path, got %v", err)
	}
}

func TestFolderScanToConfigEndToEnd(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteModFolder(t, root, "A", true, 0)
	testsupport.WriteModFolder(t, root, "B", false, 0)
	config := writeConfig(t, sampleConfig)

	paths, err := modconfig.ScanModFolder(root)
	if err != nil {
		t.Fatalf("ScanModFolder: %v", err)
	}
	if _, err := modconfig.WritePackages(config, paths); err != nil {
		t.Fatalf("WritePackages: %v", err)
	}
	got, _ := modconfig.ReadPackages(config)
	if want := []string{"LocalMods/A/filelist.xml"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("packages = %v, want %v", got, want)
	}
}
