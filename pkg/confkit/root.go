package confkit

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// maxRootDepth bounds the upward search for the module root.
const maxRootDepth = 8

// walkUp visits dir and its parents, nearest first, until visit returns true,
// the module root (go.mod or .git) has been visited, or the depth runs out.
// It reports the directory it stopped at and whether that is the module root.
func walkUp(dir string, visit func(dir string) bool) (string, bool) {
	for i := 0; i < maxRootDepth; i++ {
		if visit != nil && visit(dir) {
			return dir, false
		}
		if isModuleRoot(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return dir, false
}

func isModuleRoot(dir string) bool {
	return exists(filepath.Join(dir, "go.mod")) || exists(filepath.Join(dir, ".git"))
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// sourceDir is the directory of this file at build time.
func sourceDir() (string, bool) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", false
	}
	return filepath.Dir(file), true
}

// ProjectRoot locates the module root from this source file, falling back to
// the working directory.
func ProjectRoot() (string, error) {
	if dir, ok := sourceDir(); ok {
		if root, found := walkUp(dir, nil); found {
			return root, nil
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	return wd, nil
}

// MustProjectPath joins rel to ProjectRoot and panics if the root is unknown.
func MustProjectPath(rel string) string {
	root, err := ProjectRoot()
	if err != nil {
		panic(err)
	}
	return filepath.Join(root, rel)
}
