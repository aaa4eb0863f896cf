// Package cmd (items_helpers.go) contains helpers shared by the 'items'
// subcommands.
package cmd

import (
	"path"
	"strings"
)

// joinRemotePath joins a remote directory and a name with forward slashes.
// The result always starts with a single "/", which is the form
// BuildPathURL expects.
//
//	joinRemotePath("/Documents", "MyFile.txt") -> "/Documents/MyFile.txt"
//	joinRemotePath("", "MyFile.txt")           -> "/MyFile.txt"
//	joinRemotePath("/Folder1/", "/Sub/a.doc")  -> "/Folder1/Sub/a.doc"
func joinRemotePath(dir, file string) string {
	if dir == "" || dir == "/" {
		return "/" + strings.TrimPrefix(file, "/")
	}
	result := strings.TrimSuffix(dir, "/") + "/" + strings.TrimPrefix(file, "/")
	if !strings.HasPrefix(result, "/") {
		result = "/" + result
	}
	return result
}

// splitRemotePath returns the parent folder and the last element of p.
func splitRemotePath(p string) (parent, name string) {
	p = strings.TrimSuffix(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Dir(p), path.Base(p)
}

// listingKey names a per-path listing for --resume.
func listingKey(kind, remotePath string) string {
	return kind + " " + remotePath
}
