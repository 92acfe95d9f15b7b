package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Asset filename stems. The extension is chosen by the uploader, so lookups
// scan for "<prefix>.*" rather than a fixed name.
const (
	CategoryImagePrefix = "categoryimg"
	ProfileImagePrefix  = "profileimg"
	CourseImagePrefix   = "courseimg"
)

const (
	categoriesDir = "Categories"
	usersDir      = "Users"
	coursesDir    = "Courses"
	contentDir    = "Content"
	exportsDir    = "Exports"
)

// Store manages the on-disk tree that mirrors database entities:
//
//	Categories/<name>/categoryimg.<ext>
//	Users/<id>/profileimg.<ext>
//	Courses/<id>/courseimg.<ext>
//	Courses/<id>/Content/<resourceName>
//
// Directories are created lazily on first write; creation is idempotent.
type Store struct {
	root string
}

// NewStore ensures the media root exists and returns a handle.
func NewStore(root string) (*Store, error) {
	if root == "" {
		root = "./media"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Store{root: root}, nil
}

// safeName strips any directory components from a caller-supplied name so
// entity names cannot address paths outside their own directory.
func safeName(name string) string {
	return filepath.Base(filepath.Clean(name))
}

// CategoryDir returns the directory owned by a category.
func (s *Store) CategoryDir(name string) string {
	return filepath.Join(s.root, categoriesDir, safeName(name))
}

// UserDir returns the directory owned by a user.
func (s *Store) UserDir(id int) string {
	return filepath.Join(s.root, usersDir, strconv.Itoa(id))
}

// CourseDir returns the directory owned by a course.
func (s *Store) CourseDir(id int) string {
	return filepath.Join(s.root, coursesDir, strconv.Itoa(id))
}

// ContentDir returns the resource subdirectory of a course.
func (s *Store) ContentDir(courseID int) string {
	return filepath.Join(s.CourseDir(courseID), contentDir)
}

// ExportsDir returns the directory holding generated roster exports.
func (s *Store) ExportsDir() string {
	return filepath.Join(s.root, exportsDir)
}

// EnsureDir creates a directory if it does not exist yet.
func (s *Store) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create entity directory: %w", err)
	}
	return nil
}

// WriteAsset stores prefixed binary content (e.g. profileimg.png) in dir,
// creating the directory when needed.
func (s *Store) WriteAsset(dir, prefix, ext string, data []byte) error {
	if err := s.EnsureDir(dir); err != nil {
		return err
	}
	name := safeName(prefix + "." + strings.TrimPrefix(ext, "."))
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write asset: %w", err)
	}
	return nil
}

// ReplaceAsset removes any existing file with the given prefix before writing
// the new one, so an image upload with a different extension leaves no stale copy.
func (s *Store) ReplaceAsset(dir, prefix, ext string, data []byte) error {
	if err := s.RemoveAsset(dir, prefix); err != nil {
		return err
	}
	return s.WriteAsset(dir, prefix, ext, data)
}

// ReadAsset scans dir for a file named "<prefix>.*" and returns its bytes.
// found is false when the directory holds no matching asset.
func (s *Store) ReadAsset(dir, prefix string) (data []byte, found bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("scan asset directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix+".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, false, fmt.Errorf("read asset: %w", err)
		}
		return data, true, nil
	}
	return nil, false, nil
}

// RemoveAsset deletes every file matching "<prefix>.*" in dir.
func (s *Store) RemoveAsset(dir, prefix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scan asset directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix+".") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove asset: %w", err)
		}
	}
	return nil
}

// WriteContent stores an uploaded resource file under the course's Content directory.
func (s *Store) WriteContent(courseID int, name string, data []byte) error {
	dir := s.ContentDir(courseID)
	if err := s.EnsureDir(dir); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, safeName(name)), data, 0o644); err != nil {
		return fmt.Errorf("write content file: %w", err)
	}
	return nil
}

// ReadContent returns the bytes of a stored resource file.
// found is false when no file with that name exists.
func (s *Store) ReadContent(courseID int, name string) (data []byte, found bool, err error) {
	data, err = os.ReadFile(filepath.Join(s.ContentDir(courseID), safeName(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read content file: %w", err)
	}
	return data, true, nil
}

// RemoveContent deletes a single resource file if present.
func (s *Store) RemoveContent(courseID int, name string) error {
	if err := os.Remove(filepath.Join(s.ContentDir(courseID), safeName(name))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove content file: %w", err)
	}
	return nil
}

// RemoveSubtree recursively deletes an entity directory and everything below it.
func (s *Store) RemoveSubtree(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove entity subtree: %w", err)
	}
	return nil
}

// RemoveOlderThan deletes regular files in dir whose modification time is
// older than ttl, returning the removed names. A missing dir is not an error.
func (s *Store) RemoveOlderThan(dir string, ttl time.Duration) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan directory: %w", err)
	}
	cutoff := time.Now().Add(-ttl)
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
			removed = append(removed, entry.Name())
		}
	}
	return removed, nil
}

// WriteFile stores bytes at the given path, creating parent directories.
// Paths are expected to come from the Dir helpers above.
func (s *Store) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// ReadFile loads bytes from the given path.
func (s *Store) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// Remove deletes the file at the given path if present.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
