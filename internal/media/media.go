// Package media picks where an image is sent from.
package media

import (
	"os"
	"path/filepath"
	"strings"
)

// Photo is an image source. Exactly one field is set.
type Photo struct {
	// FileID is a transport handle from an earlier upload
	FileID string
	// URL is a remote image the transport fetches itself
	URL string
	// Path is a local file uploaded on send
	Path string
}

// Cached reports whether the photo reuses an earlier upload
func (p Photo) Cached() bool {
	return p.FileID != ""
}

// String describes the source for logs
func (p Photo) String() string {
	switch {
	case p.FileID != "":
		return "file_id:" + p.FileID
	case p.URL != "":
		return p.URL
	default:
		return p.Path
	}
}

// Resolve picks the photo source: the cached handle first, then a remote
// http(s) reference, then a file under baseDir. A local reference with no
// file behind it yields ok=false.
func Resolve(baseDir, fileID, ref string) (Photo, bool) {
	if fileID != "" {
		return Photo{FileID: fileID}, true
	}
	if ref == "" {
		return Photo{}, false
	}
	if strings.HasPrefix(ref, "http") && !strings.HasPrefix(ref, "./") {
		return Photo{URL: ref}, true
	}
	if filepath.IsAbs(ref) {
		return Local(ref)
	}
	return Local(filepath.Join(baseDir, strings.TrimLeft(ref, "./")))
}

// Local returns the file at path when it exists
func Local(path string) (Photo, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Photo{}, false
	}
	return Photo{Path: path}, true
}
