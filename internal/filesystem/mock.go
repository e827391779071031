package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MockFileSystem provides in-memory filesystem for testing
type MockFileSystem struct {
	files      map[string]*MockFile
	currentDir string
	tempSeq    int

	// failures injects errors keyed by "op:path" (see FailOn)
	failures map[string]error
}

// MockFile represents a file in the mock filesystem
type MockFile struct {
	Content []byte
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry
type mockDirEntry struct {
	info fs.FileInfo
}

func (m *mockDirEntry) Name() string               { return m.info.Name() }
func (m *mockDirEntry) IsDir() bool                { return m.info.IsDir() }
func (m *mockDirEntry) Type() fs.FileMode          { return m.info.Mode().Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) { return m.info, nil }

// NewMockFileSystem creates a new MockFileSystem
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:      make(map[string]*MockFile),
		currentDir: "/workspace",
		failures:   make(map[string]error),
	}
}

// FailOn makes the operation op ("write", "mkdir", "rename", "removeall",
// "read") on path return err. A path ending in "/*" matches everything
// below that directory.
func (mfs *MockFileSystem) FailOn(op, path string, err error) {
	key := filepath.Clean(strings.TrimSuffix(path, "/*"))
	if strings.HasSuffix(path, "/*") {
		key += "/*"
	}
	mfs.failures[op+":"+key] = err
}

func (mfs *MockFileSystem) injected(op, path string) error {
	clean := filepath.Clean(path)
	if err, ok := mfs.failures[op+":"+clean]; ok {
		return err
	}
	for key, err := range mfs.failures {
		if !strings.HasPrefix(key, op+":") || !strings.HasSuffix(key, "/*") {
			continue
		}
		prefix := strings.TrimSuffix(strings.TrimPrefix(key, op+":"), "*")
		if strings.HasPrefix(clean, prefix) {
			return err
		}
	}
	return nil
}

// AddFile adds a file to the mock filesystem
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	cleanPath := filepath.Clean(path)
	mfs.files[cleanPath] = &MockFile{
		Content: content,
		Mode:    0644,
		ModTime: time.Now(),
		IsDir:   false,
	}
	mfs.ensureParents(cleanPath)
}

// AddDir adds a directory to the mock filesystem
func (mfs *MockFileSystem) AddDir(path string) {
	cleanPath := filepath.Clean(path)
	if _, exists := mfs.files[cleanPath]; !exists {
		mfs.files[cleanPath] = &MockFile{
			Mode:    0755 | fs.ModeDir,
			ModTime: time.Now(),
			IsDir:   true,
		}
	}
	mfs.ensureParents(cleanPath)
}

func (mfs *MockFileSystem) ensureParents(cleanPath string) {
	dir := filepath.Dir(cleanPath)
	for dir != "." && dir != "/" && dir != cleanPath {
		if _, exists := mfs.files[dir]; !exists {
			mfs.AddDir(dir)
		}
		dir = filepath.Dir(dir)
	}
}

func (mfs *MockFileSystem) ReadFile(path string) ([]byte, error) {
	if err := mfs.injected("read", path); err != nil {
		return nil, err
	}
	file, exists := mfs.files[filepath.Clean(path)]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDir {
		return nil, errors.New("is a directory")
	}
	return file.Content, nil
}

func (mfs *MockFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	if err := mfs.injected("write", path); err != nil {
		return err
	}
	cleanPath := filepath.Clean(path)

	// Ensure parent directory exists
	dir := filepath.Dir(cleanPath)
	if dir != "." && dir != "/" {
		if _, exists := mfs.files[dir]; !exists {
			return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
	}

	mfs.files[cleanPath] = &MockFile{
		Content: data,
		Mode:    perm,
		ModTime: time.Now(),
		IsDir:   false,
	}
	return nil
}

func (mfs *MockFileSystem) Remove(path string) error {
	cleanPath := filepath.Clean(path)
	if _, exists := mfs.files[cleanPath]; !exists {
		return fs.ErrNotExist
	}
	delete(mfs.files, cleanPath)
	return nil
}

func (mfs *MockFileSystem) RemoveAll(path string) error {
	if err := mfs.injected("removeall", path); err != nil {
		return err
	}
	cleanPath := filepath.Clean(path)
	prefix := cleanPath + string(filepath.Separator)
	for p := range mfs.files {
		if p == cleanPath || strings.HasPrefix(p, prefix) {
			delete(mfs.files, p)
		}
	}
	return nil
}

func (mfs *MockFileSystem) Rename(oldPath, newPath string) error {
	if err := mfs.injected("rename", oldPath); err != nil {
		return err
	}
	oldClean := filepath.Clean(oldPath)
	newClean := filepath.Clean(newPath)

	if _, exists := mfs.files[oldClean]; !exists {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	if _, exists := mfs.files[newClean]; exists {
		return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrExist}
	}
	if parent := filepath.Dir(newClean); parent != "/" && parent != "." {
		if _, exists := mfs.files[parent]; !exists {
			return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrNotExist}
		}
	}

	prefix := oldClean + string(filepath.Separator)
	moved := make(map[string]*MockFile)
	for p, f := range mfs.files {
		switch {
		case p == oldClean:
			moved[newClean] = f
		case strings.HasPrefix(p, prefix):
			moved[filepath.Join(newClean, strings.TrimPrefix(p, prefix))] = f
		default:
			continue
		}
		delete(mfs.files, p)
	}
	for p, f := range moved {
		mfs.files[p] = f
	}
	return nil
}

func (mfs *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	cleanPath := filepath.Clean(path)

	file, exists := mfs.files[cleanPath]
	if !exists {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}
	if !file.IsDir {
		return nil, errors.New("not a directory")
	}

	var entries []fs.DirEntry
	for p, f := range mfs.files {
		dir := filepath.Dir(p)
		if dir == cleanPath && p != cleanPath {
			entries = append(entries, &mockDirEntry{info: mfs.infoFor(p, f)})
		}
	}

	// Sort entries by name for consistent ordering
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	return entries, nil
}

func (mfs *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	if err := mfs.injected("mkdir", path); err != nil {
		return err
	}
	cleanPath := filepath.Clean(path)
	if f, exists := mfs.files[cleanPath]; exists && !f.IsDir {
		return &fs.PathError{Op: "mkdir", Path: path, Err: errors.New("not a directory")}
	}
	parts := strings.Split(cleanPath, string(filepath.Separator))

	current := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if current == "" {
			current = string(filepath.Separator) + part
		} else {
			current = filepath.Join(current, part)
		}

		if _, exists := mfs.files[current]; !exists {
			mfs.files[current] = &MockFile{
				Mode:    perm | fs.ModeDir,
				ModTime: time.Now(),
				IsDir:   true,
			}
		}
	}
	return nil
}

func (mfs *MockFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	if dir == "" {
		dir = "/tmp"
	}
	mfs.tempSeq++
	name := strings.Replace(pattern, "*", fmt.Sprintf("%06d", mfs.tempSeq), 1)
	if !strings.Contains(pattern, "*") {
		name = fmt.Sprintf("%s%06d", pattern, mfs.tempSeq)
	}
	path := filepath.Join(dir, name)
	if err := mfs.MkdirAll(path, 0700); err != nil {
		return "", err
	}
	return path, nil
}

func (mfs *MockFileSystem) Stat(path string) (fs.FileInfo, error) {
	cleanPath := filepath.Clean(path)
	file, exists := mfs.files[cleanPath]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return mfs.infoFor(cleanPath, file), nil
}

func (mfs *MockFileSystem) infoFor(path string, file *MockFile) *mockFileInfo {
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(file.Content)),
		mode:    file.Mode,
		modTime: file.ModTime,
		isDir:   file.IsDir,
	}
}

func (mfs *MockFileSystem) Exists(path string) bool {
	_, exists := mfs.files[filepath.Clean(path)]
	return exists
}

func (mfs *MockFileSystem) Getwd() (string, error) {
	return mfs.currentDir, nil
}

func (mfs *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	cleanRoot := filepath.Clean(root)

	if _, exists := mfs.files[cleanRoot]; !exists {
		return &fs.PathError{Op: "walk", Path: root, Err: fs.ErrNotExist}
	}

	// Collect all paths that are under root
	var paths []string
	for p := range mfs.files {
		if p == cleanRoot || strings.HasPrefix(p, cleanRoot+string(filepath.Separator)) {
			paths = append(paths, p)
		}
	}

	// Sort paths for consistent ordering
	sort.Strings(paths)

	var skipped []string
	for _, p := range paths {
		if underAny(p, skipped) {
			continue
		}

		file := mfs.files[p]
		entry := &mockDirEntry{info: mfs.infoFor(p, file)}

		if err := fn(p, entry, nil); err != nil {
			if err == filepath.SkipDir {
				if file.IsDir {
					skipped = append(skipped, p+string(filepath.Separator))
				}
				continue
			}
			return err
		}
	}

	return nil
}

func underAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (mfs *MockFileSystem) Glob(pattern string) ([]string, error) {
	var matches []string

	for p := range mfs.files {
		matched, err := filepath.Match(pattern, p)
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, p)
		}
	}

	sort.Strings(matches)
	return matches, nil
}

// SetCurrentDir sets the current working directory for the mock
func (mfs *MockFileSystem) SetCurrentDir(dir string) {
	mfs.currentDir = dir
	mfs.AddDir(dir)
}

// GetFiles returns all files in the mock filesystem (for debugging)
func (mfs *MockFileSystem) GetFiles() map[string]*MockFile {
	return mfs.files
}

// PrintTree prints the filesystem tree (for debugging)
func (mfs *MockFileSystem) PrintTree() {
	var paths []string
	for p := range mfs.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		marker := "f"
		if mfs.files[p].IsDir {
			marker = "d"
		}
		fmt.Printf("%s %s\n", marker, p)
	}
}
