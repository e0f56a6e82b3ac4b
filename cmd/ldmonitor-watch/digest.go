package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/launchdarkly/go-config-monitor/ldfactory"
)

// FileDigest describes one watched file. The contents are hashed, never parsed.
type FileDigest struct {
	Path    string
	Missing bool
	Size    int64
	SHA256  string
}

// FilesDigest is the configuration snapshot that ldmonitor-watch keeps up to date.
type FilesDigest struct {
	Name  string
	Files []FileDigest
	Sum   string
	Err   error
}

// Present returns the number of files that exist.
func (d FilesDigest) Present() int {
	n := 0
	for _, f := range d.Files {
		if !f.Missing {
			n++
		}
	}
	return n
}

func digestFile(path string) (FileDigest, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileDigest{Path: path, Missing: true}, nil
	}
	if err != nil {
		return FileDigest{}, err
	}
	defer f.Close()
	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return FileDigest{}, err
	}
	return FileDigest{Path: path, Size: size, SHA256: hex.EncodeToString(h.Sum(nil))}, nil
}

// newDigestFactory returns a factory that digests the given files for every configuration name.
// Creating a snapshot fails if a file cannot be read, or if none of the files exist.
func newDigestFactory(paths []string) *ldfactory.Factory[FilesDigest] {
	return ldfactory.New[FilesDigest]().
		ConfigureAll(func(name string, d *FilesDigest) {
			d.Name = name
			combined := sha256.New()
			for _, p := range paths {
				fd, err := digestFile(p)
				if err != nil {
					d.Err = err
					return
				}
				d.Files = append(d.Files, fd)
				_, _ = io.WriteString(combined, p+"\x00"+fd.SHA256+"\x00")
			}
			d.Sum = hex.EncodeToString(combined.Sum(nil))
		}).
		Validate(func(d FilesDigest) bool { return d.Err == nil }, "unable to read a watched file").
		Validate(func(d FilesDigest) bool { return d.Err != nil || d.Present() > 0 }, "none of the watched files exist")
}
