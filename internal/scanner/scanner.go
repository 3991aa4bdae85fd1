// Package scanner discovers interview YAML files under a directory tree.
// It respects .dadagignore files with gitignore-style patterns and skips
// the usual build and VCS directories.
package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileInfo describes one discovered interview file.
type FileInfo struct {
	Path     string // relative to the scan root, forward slashes
	FullPath string // absolute path
	Size     int64
}

// Options configures scanning behavior.
type Options struct {
	Recursive       bool
	SkipHidden      bool
	Extensions      []string // matched case-insensitively
	DefaultExcludes []string
	IgnoreFileName  string
}

// DefaultOptions returns scanner options suited to interview packages.
func DefaultOptions() Options {
	return Options{
		Recursive:      true,
		SkipHidden:     true,
		Extensions:     []string{".yml", ".yaml"},
		IgnoreFileName: ".dadagignore",
		DefaultExcludes: []string{
			"node_modules",
			".git",
			"__pycache__",
			".venv",
			"venv",
			"dist",
			"build",
			".idea",
			".vscode",
			"vendor",
			".tox",
		},
	}
}

// Scanner walks directory trees looking for interview files.
type Scanner struct {
	opts Options
}

func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Scan walks root and returns the matching files sorted by relative path.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	patterns, err := s.loadIgnorePatterns(absRoot, "")
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	var files []FileInfo

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		relSlash := filepath.ToSlash(relPath)

		if s.opts.SkipHidden && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if !s.opts.Recursive {
				return filepath.SkipDir
			}
			if s.isDefaultExcluded(info.Name()) {
				return filepath.SkipDir
			}
			nested, err := s.loadIgnorePatterns(path, relSlash)
			if err == nil {
				patterns = append(patterns, nested...)
			}
			return nil
		}

		if !s.hasWantedExtension(path) {
			return nil
		}
		if matchesIgnorePatterns(relSlash, patterns) {
			return nil
		}

		files = append(files, FileInfo{
			Path:     relSlash,
			FullPath: path,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *Scanner) hasWantedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range s.opts.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// loadIgnorePatterns reads the ignore file in dir, if any. base is dir
// relative to the scan root; patterns only apply beneath it.
func (s *Scanner) loadIgnorePatterns(dir, base string) ([]ignorePattern, error) {
	if s.opts.IgnoreFileName == "" {
		return nil, nil
	}
	file, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []ignorePattern
	lines := bufio.NewScanner(file)
	for lines.Scan() {
		line := strings.TrimSpace(lines.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, parseIgnorePattern(line, base))
	}
	return patterns, lines.Err()
}

// Scan is a convenience wrapper using default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}
