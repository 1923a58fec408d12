// Package fileutil holds filesystem helpers shared by the download and
// relocation code: verified copies, directory moves that survive crossing
// filesystems, and clearing an existing destination by deleting it or sending
// it to the platform trash.
package fileutil
