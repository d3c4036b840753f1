package sitter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"sync"
	"unsafe"

	ts_yaml "github.com/tree-sitter-grammars/tree-sitter-yaml/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	ts_json "github.com/tree-sitter/tree-sitter-json/bindings/go"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var validGrammarName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// compiled-in grammars; anything else is loaded from a shared library
var builtin = map[string]func() unsafe.Pointer{
	"go":     ts_go.Language,
	"json":   ts_json.Language,
	"python": ts_python.Language,
	"yaml":   ts_yaml.Language,
}

// Builtin lists the names of the compiled-in grammars.
func Builtin() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Language is a resolved grammar.
type Language struct {
	Name string
	// Path is the shared library the grammar was loaded from, empty for
	// compiled-in grammars.
	Path string

	lang *tree_sitter.Language
}

// Loader resolves grammar names to languages. Shared libraries are only
// searched in trusted directories and stay loaded for the lifetime of the
// Loader.
type Loader struct {
	mu          sync.Mutex
	trustedDirs []string
	extraDirs   []string
	noDefaults  bool
	loaded      map[string]*Language
	libs        []uintptr
}

type LoaderOption func(*Loader)

// WithTrustedDir adds a directory to search for grammar libraries. Directories
// added this way are searched before the defaults, in the order given.
func WithTrustedDir(dir string) LoaderOption {
	return func(l *Loader) {
		if abs, err := filepath.Abs(dir); err == nil {
			l.extraDirs = append(l.extraDirs, abs)
		}
	}
}

// WithoutDefaultDirs drops the default search directories.
func WithoutDefaultDirs() LoaderOption {
	return func(l *Loader) {
		l.noDefaults = true
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		loaded: make(map[string]*Language),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.trustedDirs = append(l.trustedDirs, l.extraDirs...)
	if !l.noDefaults {
		l.trustedDirs = append(l.trustedDirs, defaultTrustedDirs()...)
	}
	return l
}

// TrustedDirs returns the directories searched for grammar libraries, in
// search order.
func (l *Loader) TrustedDirs() []string {
	return append([]string(nil), l.trustedDirs...)
}

func defaultTrustedDirs() []string {
	var dirs []string
	if dataDir := dataDir(); dataDir != "" {
		dirs = append(dirs, filepath.Join(dataDir, "grammars"))
	}
	switch runtime.GOOS {
	case "darwin":
		dirs = append(dirs, "/opt/homebrew/lib", "/usr/local/lib")
	case "linux":
		dirs = append(dirs, "/usr/lib", "/usr/local/lib")
	}
	return dirs
}

func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "scryer")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "scryer")
	}
	return filepath.Join(home, ".local", "share", "scryer")
}

// Load resolves a grammar by name. Compiled-in grammars win over shared
// libraries of the same name.
func (l *Loader) Load(name string) (*Language, error) {
	if !validGrammarName.MatchString(name) {
		return nil, fmt.Errorf("%w %q: must be 1-64 lowercase alphanumeric chars or '_'", ErrInvalidGrammarName, name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if lang, ok := l.loaded[name]; ok {
		return lang, nil
	}

	var lang *Language
	if fn, ok := builtin[name]; ok {
		lang = &Language{Name: name, lang: tree_sitter.NewLanguage(fn())}
	} else {
		path, err := l.findLibrary(name)
		if err != nil {
			return nil, err
		}
		ptr, lib, err := openLibrary(path, name)
		if err != nil {
			return nil, err
		}
		l.libs = append(l.libs, lib)
		lang = &Language{Name: name, Path: path, lang: tree_sitter.NewLanguage(ptr)}
	}
	l.loaded[name] = lang
	return lang, nil
}

// Close unloads every shared library opened by the Loader. Languages and
// parsers obtained from it must not be used afterwards.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, lib := range l.libs {
		closeLibrary(lib)
	}
	l.libs = nil
	l.loaded = make(map[string]*Language)
}

func (l *Loader) findLibrary(name string) (string, error) {
	libName := grammarLibName(name)
	for _, dir := range l.trustedDirs {
		if err := validateDirectory(dir); err != nil {
			continue
		}
		path := filepath.Join(dir, libName)
		if err := validateLibraryFile(path, dir); err != nil {
			continue
		}
		return path, nil
	}
	return "", fmt.Errorf("%w: %q is not compiled in and %s is not in any of %v", ErrGrammarNotFound, name, libName, l.trustedDirs)
}

func grammarLibName(name string) string {
	if runtime.GOOS == "darwin" {
		return "libtree-sitter-" + name + ".dylib"
	}
	return "libtree-sitter-" + name + ".so"
}
