package fileutil

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned when a path resolves to neither a loose file nor a pack entry
	ErrNotFound = fmt.Errorf("resource not found: %w", fs.ErrNotExist)

	// ErrUnsupportedMode is returned for any open mode other than read
	ErrUnsupportedMode = errors.New("unsupported open mode")

	// ErrClosed is returned when reading or seeking a released file
	ErrClosed = errors.New("file already closed")
)

// FileUtils resolves resource paths and hands out read-only file handles.
//
// Loose files are looked up in each search path in order, first match wins.
// Mounted zip packs are consulted after the loose files, also in mount order.
// FileUtils is not safe for concurrent mutation; mount everything up front.
type FileUtils struct {
	searchPaths []string
	packs       []*pack
}

type pack struct {
	name    string
	archive *zip.ReadCloser
	entries map[string]*zip.File
}

// New creates a FileUtils with the given search paths
func New(searchPaths ...string) *FileUtils {
	fu := &FileUtils{}
	for _, p := range searchPaths {
		fu.AddSearchPath(p)
	}
	return fu
}

// AddSearchPath appends a directory to the search list
func (fu *FileUtils) AddSearchPath(dir string) {
	if dir == "" {
		return
	}
	fu.searchPaths = append(fu.searchPaths, filepath.Clean(dir))
}

// SearchPaths returns a copy of the current search list
func (fu *FileUtils) SearchPaths() []string {
	out := make([]string, len(fu.searchPaths))
	copy(out, fu.searchPaths)
	return out
}

// MountPack opens a zip archive and makes its entries resolvable
func (fu *FileUtils) MountPack(archivePath string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to mount pack %s: %w", archivePath, err)
	}

	p := &pack{
		name:    archivePath,
		archive: zr,
		entries: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		p.entries[path.Clean(f.Name)] = f
	}

	fu.packs = append(fu.packs, p)
	return nil
}

// UnmountAll closes every mounted pack
// Handles already opened from a pack stay valid since entries are held in memory
func (fu *FileUtils) UnmountAll() error {
	var errs []error
	for _, p := range fu.packs {
		if err := p.archive.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to unmount %s: %w", p.name, err))
		}
	}
	fu.packs = nil
	return errors.Join(errs...)
}

// FullPath resolves a path to a loose file on disk
func (fu *FileUtils) FullPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}

	if filepath.IsAbs(name) || len(fu.searchPaths) == 0 {
		if isRegular(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	for _, dir := range fu.searchPaths {
		candidate := filepath.Join(dir, name)
		if isRegular(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// IsFileExist reports whether the path resolves on disk or in a pack
func (fu *FileUtils) IsFileExist(name string) bool {
	if _, err := fu.FullPath(name); err == nil {
		return true
	}
	return fu.packEntry(name) != nil
}

// Open resolves a path and returns a read-only handle.
// mode follows fopen conventions; only "r" and "rb" are accepted.
func (fu *FileUtils) Open(name string, mode string) (*File, error) {
	if mode != "r" && mode != "rb" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}

	if full, err := fu.FullPath(name); err == nil {
		return openDisk(full)
	}

	if entry := fu.packEntry(name); entry != nil {
		return openEntry(entry)
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Close releases a handle obtained from Open. Nil and already-closed handles are ignored.
func (fu *FileUtils) Close(f *File) error {
	if f == nil {
		return nil
	}
	return f.Close()
}

func (fu *FileUtils) packEntry(name string) *zip.File {
	if name == "" || filepath.IsAbs(name) {
		return nil
	}
	key := path.Clean(strings.TrimPrefix(filepath.ToSlash(name), "./"))
	for _, p := range fu.packs {
		if f, ok := p.entries[key]; ok {
			return f
		}
	}
	return nil
}

func isRegular(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

func openDisk(full string) (*File, error) {
	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", full, err)
	}

	return &File{
		name:   full,
		r:      f,
		closer: f,
		size:   info.Size(),
	}, nil
}

func openEntry(entry *zip.File) (*File, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open pack entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to inflate pack entry %s: %w", entry.Name, err)
	}

	return &File{
		name: entry.Name,
		r:    bytes.NewReader(data),
		size: int64(len(data)),
	}, nil
}
