package sitter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/ebitengine/purego"
)

// openLibrary loads a grammar library and returns the language pointer
// exported as tree_sitter_<name>.
func openLibrary(path, name string) (unsafe.Pointer, uintptr, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, 0, fmt.Errorf("dlopen %s: %w", path, err)
	}

	sym := "tree_sitter_" + name
	if _, err := purego.Dlsym(lib, sym); err != nil {
		purego.Dlclose(lib)
		return nil, 0, fmt.Errorf("%w: %s does not export %s", ErrGrammarNotFound, path, sym)
	}

	var langFunc func() unsafe.Pointer
	purego.RegisterLibFunc(&langFunc, lib, sym)

	ptr := langFunc()
	if ptr == nil {
		purego.Dlclose(lib)
		return nil, 0, fmt.Errorf("%s returned null", sym)
	}
	return ptr, lib, nil
}

func closeLibrary(lib uintptr) {
	if lib != 0 {
		purego.Dlclose(lib)
	}
}

func validateDirectory(dir string) error {
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(realDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}
	if isWorldWritable(info) {
		return fmt.Errorf("world-writable directory rejected: %s", dir)
	}
	return nil
}

func validateLibraryFile(path, trustedDir string) error {
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}
	realTrusted, err := filepath.EvalSymlinks(trustedDir)
	if err != nil {
		return err
	}
	if !isSubpath(realPath, realTrusted) {
		return fmt.Errorf("path escapes trusted directory: %s", path)
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("expected file, got directory: %s", path)
	}
	if isWorldWritable(info) {
		return fmt.Errorf("world-writable file rejected: %s", path)
	}
	return nil
}

func isSubpath(child, parent string) bool {
	child = filepath.Clean(child)
	parent = filepath.Clean(parent)
	if child == parent {
		return true
	}
	if !strings.HasSuffix(parent, string(filepath.Separator)) {
		parent += string(filepath.Separator)
	}
	return strings.HasPrefix(child, parent)
}

func isWorldWritable(info os.FileInfo) bool {
	return info.Mode().Perm()&0o002 != 0
}
