// Package walk enumerates the source files of a project directory.
//
// Directories are visited in lexical order. A Walker skips hidden entries
// and version control and dependency directories. It honors the .gitignore
// and .ignore files found along the way, applies exclude globs and keeps only
// files with one of the configured extensions.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	gitignore "github.com/monochromegane/go-gitignore"
)

// DefaultSkipDirs are never descended into.
var DefaultSkipDirs = []string{".git", "node_modules", "_build", "deps", "vendor"}

// IgnoreFiles are read in every visited directory unless ignore files are
// disabled.
var IgnoreFiles = []string{".gitignore", ".ignore"}

// ErrInvalidPattern is returned for exclude globs that do not compile.
var ErrInvalidPattern = errors.New("invalid exclude pattern")

type Walker struct {
	root     string
	absRoot  string
	exts     map[string]bool
	excludes []glob.Glob
	skipDirs map[string]bool
	noIgnore bool
	hidden   bool
	onError  func(path string, err error)

	mu sync.Mutex
	// scopes of every ignore file read by the last walk
	known []ignoreScope
}

type Option func(*Walker) error

// WithExtensions keeps only files with one of the given extensions. The
// leading dot is optional. Without this option every file is kept.
func WithExtensions(exts ...string) Option {
	return func(w *Walker) error {
		for _, ext := range exts {
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			w.exts[ext] = true
		}
		return nil
	}
}

// WithExcludes skips files and directories matching any of the globs. A glob
// is matched against the root-relative slash path and against the base name.
func WithExcludes(patterns ...string) Option {
	return func(w *Walker) error {
		for _, pattern := range patterns {
			g, err := glob.Compile(pattern, '/')
			if err != nil {
				return fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
			}
			w.excludes = append(w.excludes, g)
		}
		return nil
	}
}

// WithoutIgnoreFiles disables .gitignore and .ignore handling.
func WithoutIgnoreFiles() Option {
	return func(w *Walker) error {
		w.noIgnore = true
		return nil
	}
}

// WithHidden also selects files and directories whose name starts with a
// dot. The skipped directories such as .git stay skipped.
func WithHidden() Option {
	return func(w *Walker) error {
		w.hidden = true
		return nil
	}
}

// WithErrorHandler receives the errors of entries that could not be read.
// Such entries are skipped.
func WithErrorHandler(fn func(path string, err error)) Option {
	return func(w *Walker) error {
		w.onError = fn
		return nil
	}
}

func New(root string, opts ...Option) (*Walker, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	w := &Walker{
		root:     root,
		absRoot:  absRoot,
		exts:     make(map[string]bool),
		skipDirs: make(map[string]bool, len(DefaultSkipDirs)),
		onError:  func(string, error) {},
	}
	for _, d := range DefaultSkipDirs {
		w.skipDirs[d] = true
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Root returns the directory the walker starts from.
func (w *Walker) Root() string { return w.root }

// ignoreScope is the matcher of one ignore file, applying below dir.
type ignoreScope struct {
	dir     string
	matcher gitignore.IgnoreMatcher
}

// Walk calls fn for every selected file, in lexical order. It stops at the
// first error returned by fn or when ctx is done.
func (w *Walker) Walk(ctx context.Context, fn func(path string) error) error {
	return w.walk(ctx, fn, nil)
}

// Dirs returns the directories Walk descends into, root first.
func (w *Walker) Dirs(ctx context.Context) ([]string, error) {
	var dirs []string
	err := w.walk(ctx, func(string) error { return nil }, func(path string) {
		dirs = append(dirs, path)
	})
	return dirs, err
}

func (w *Walker) walk(ctx context.Context, fn func(path string) error, onDir func(path string)) error {
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("walking %s: %w", w.root, err)
	}
	if !info.IsDir() {
		if w.keepFile(w.root) {
			return fn(w.root)
		}
		return nil
	}

	var scopes, known []ignoreScope
	defer func() {
		w.mu.Lock()
		w.known = known
		w.mu.Unlock()
	}()
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == w.root {
				return walkErr
			}
			w.onError(path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		abs := filepath.Join(w.absRoot, w.rel(path))
		for len(scopes) > 0 && !within(abs, scopes[len(scopes)-1].dir) {
			scopes = scopes[:len(scopes)-1]
		}

		isDir := d.IsDir()
		if path != w.root {
			if isDir && w.skipDirs[d.Name()] {
				return fs.SkipDir
			}
			if !w.hidden && strings.HasPrefix(d.Name(), ".") {
				if isDir {
					return fs.SkipDir
				}
				return nil
			}
			if w.excluded(path) || ignored(scopes, abs, isDir) {
				if isDir {
					return fs.SkipDir
				}
				return nil
			}
		}

		if isDir {
			if onDir != nil {
				onDir(path)
			}
			if !w.noIgnore {
				found := w.readIgnoreFiles(path, abs)
				scopes = append(scopes, found...)
				known = append(known, found...)
			}
			return nil
		}
		if !d.Type().IsRegular() || !w.keepFile(path) {
			return nil
		}
		return fn(path)
	})
}

// Files collects the selected files.
func (w *Walker) Files(ctx context.Context) ([]string, error) {
	var files []string
	err := w.Walk(ctx, func(path string) error {
		files = append(files, path)
		return nil
	})
	return files, err
}

// Selects reports whether a file would be selected by a walk. Ignore files
// are those read by the last walk, so call Dirs or Walk first. It is used to
// filter file system events.
func (w *Walker) Selects(path string) bool {
	rel := w.rel(path)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	for i, part := range parts {
		if i < len(parts)-1 && w.skipDirs[part] {
			return false
		}
		if !w.hidden && strings.HasPrefix(part, ".") {
			return false
		}
	}
	if w.excluded(path) || !w.keepFile(path) {
		return false
	}
	if w.noIgnore {
		return true
	}

	w.mu.Lock()
	known := w.known
	w.mu.Unlock()

	abs := filepath.Join(w.absRoot, rel)
	for dir := filepath.Dir(abs); dir != w.absRoot && within(dir, w.absRoot); dir = filepath.Dir(dir) {
		if ignored(scopesFor(known, dir), dir, true) {
			return false
		}
	}
	return !ignored(scopesFor(known, abs), abs, false)
}

// scopesFor returns the scopes whose directory contains abs.
func scopesFor(known []ignoreScope, abs string) []ignoreScope {
	var scopes []ignoreScope
	for _, s := range known {
		if within(abs, s.dir) {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func (w *Walker) keepFile(path string) bool {
	if len(w.exts) == 0 {
		return true
	}
	return w.exts[filepath.Ext(path)]
}

func (w *Walker) rel(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(w.absRoot, abs)
	if err != nil {
		return path
	}
	return rel
}

func (w *Walker) excluded(path string) bool {
	if len(w.excludes) == 0 {
		return false
	}
	rel := filepath.ToSlash(w.rel(path))
	base := filepath.Base(path)
	for _, g := range w.excludes {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Walker) readIgnoreFiles(dir, absDir string) []ignoreScope {
	var scopes []ignoreScope
	for _, name := range IgnoreFiles {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				w.onError(filepath.Join(dir, name), err)
			}
			continue
		}
		scopes = append(scopes, ignoreScope{
			dir:     absDir,
			matcher: gitignore.NewGitIgnoreFromReader(absDir, f),
		})
		f.Close()
	}
	return scopes
}

func ignored(scopes []ignoreScope, abs string, isDir bool) bool {
	for _, s := range scopes {
		if s.matcher.Match(abs, isDir) {
			return true
		}
	}
	return false
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}
