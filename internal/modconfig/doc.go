// Package modconfig rewrites the package list of a game's XML mod
// configuration.
//
// The list lives in the single contentpackages/regularpackages element. Each
// write replaces that element's children wholesale with one
// <package path="LocalMods/<name>/filelist.xml"/> per entry, in the order
// given, and leaves every other node and attribute of the document alone.
// Entries come either from scanning a local mod folder or from a resolved
// workshop collection.
package modconfig
