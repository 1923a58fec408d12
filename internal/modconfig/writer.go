package modconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"workshopdl/internal/services"
)

// PackageListPath locates the element whose children are rewritten.
const PackageListPath = "contentpackages/regularpackages"

// WritePackages replaces the package list in the XML document at configPath
// with one <package path="..."/> per entry of paths, then saves the document
// in place. It returns the number of package elements removed.
func WritePackages(configPath string, paths []string) (int, error) {
	doc, err := readDocument(configPath)
	if err != nil {
		return 0, err
	}

	list := doc.FindElement(PackageListPath)
	if list == nil {
		return 0, services.Wrap(services.ErrConfigStructure, "modconfig", "locate package list",
			fmt.Sprintf("%s has no %s element", configPath, PackageListPath), nil)
	}

	removed := len(list.SelectElements("package"))
	for len(list.Child) > 0 {
		list.RemoveChildAt(0)
	}
	for _, p := range paths {
		pkg := list.CreateElement("package")
		pkg.CreateAttr("path", p)
	}

	doc.Indent(2)
	if err := writeDocument(doc, configPath); err != nil {
		return removed, err
	}
	return removed, nil
}

// ReadPackages lists the package paths currently configured at configPath.
func ReadPackages(configPath string) ([]string, error) {
	doc, err := readDocument(configPath)
	if err != nil {
		return nil, err
	}
	list := doc.FindElement(PackageListPath)
	if list == nil {
		return nil, services.Wrap(services.ErrConfigStructure, "modconfig", "locate package list",
			fmt.Sprintf("%s has no %s element", configPath, PackageListPath), nil)
	}
	var paths []string
	for _, pkg := range list.SelectElements("package") {
		paths = append(paths, pkg.SelectAttrValue("path", ""))
	}
	return paths, nil
}

func readDocument(configPath string) (*etree.Document, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "modconfig", "read config", configPath, err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, services.Wrap(services.ErrConfigStructure, "modconfig", "parse config", configPath, err)
	}
	if doc.Root() == nil {
		return nil, services.Wrap(services.ErrConfigStructure, "modconfig", "parse config", configPath+": no root element", nil)
	}
	return doc, nil
}

// writeDocument replaces configPath via a sibling temp file so a failed
// write never truncates the original.
func writeDocument(doc *etree.Document, configPath string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(configPath); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(configPath), "."+filepath.Base(configPath)+".*")
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "modconfig", "write config", configPath, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := doc.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return services.Wrap(services.ErrFilesystem, "modconfig", "write config", configPath, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return services.Wrap(services.ErrFilesystem, "modconfig", "write config", configPath, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return services.Wrap(services.ErrFilesystem, "modconfig", "write config", configPath, err)
	}
	if err := os.Rename(tmpName, configPath); err != nil {
		cleanup()
		return services.Wrap(services.ErrFilesystem, "modconfig", "replace config", configPath, err)
	}
	return nil
}
