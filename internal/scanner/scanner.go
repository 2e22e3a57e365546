// Package scanner discovers TEAL source files under a directory tree. It
// respects .tealscanignore files with gitignore-style patterns.
package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo represents one discovered TEAL file.
type FileInfo struct {
	Path     string // Relative path from root
	FullPath string // Absolute path
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	Extensions      []string // File extensions to collect (default: .teal)
	DefaultExcludes []string // Default directories to exclude
	IgnoreFileName  string   // Name of the ignore file (default: .tealscanignore)
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		Extensions:     []string{".teal"},
		IgnoreFileName: ".tealscanignore",
		DefaultExcludes: []string{
			"node_modules",
			".git",
			"__pycache__",
			".venv",
			"venv",
			"dist",
			"build",
			"vendor",
		},
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts Options
	root string
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Scan recursively scans the directory at root and returns the matching
// files. Ignore patterns and default exclusions apply; walk errors on
// individual entries are skipped rather than aborting the scan.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	s.root = absRoot

	ignorePatterns, err := s.loadIgnorePatterns(absRoot)
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	var files []FileInfo

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if relPath == "." {
			return nil
		}
		relPathSlash := filepath.ToSlash(relPath)

		if s.opts.SkipHidden && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if s.isDefaultExcluded(info.Name()) {
				return filepath.SkipDir
			}
			// Nested ignore files extend the pattern set for the subtree.
			nested, err := s.loadIgnorePatterns(path)
			if err == nil && len(nested) > 0 {
				ignorePatterns = append(ignorePatterns, nested...)
			}
			return nil
		}

		if !s.hasWantedExtension(path) {
			return nil
		}
		if matchesIgnorePatterns(relPathSlash, ignorePatterns) {
			return nil
		}

		files = append(files, FileInfo{
			Path:     relPathSlash,
			FullPath: path,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return files, nil
}

func (s *Scanner) hasWantedExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range s.opts.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// isDefaultExcluded checks if the name matches default exclusion patterns.
func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// loadIgnorePatterns loads patterns from the ignore file in dir, if any.
func (s *Scanner) loadIgnorePatterns(dir string) ([]IgnorePattern, error) {
	ignorePath := filepath.Join(dir, s.opts.IgnoreFileName)
	file, err := os.Open(ignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []IgnorePattern
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, ParseIgnorePattern(line))
	}

	return patterns, scanner.Err()
}

// matchesIgnorePatterns applies gitignore semantics: patterns are checked
// in order, and a later negation overrides an earlier match.
func matchesIgnorePatterns(relPath string, patterns []IgnorePattern) bool {
	ignored := false
	for _, pattern := range patterns {
		if pattern.Match(relPath) {
			ignored = !pattern.IsNegation()
		}
	}
	return ignored
}

// Scan is a convenience function that scans a directory with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}
