// Package confkit holds the config plumbing shared by the server and CLI.
//
// The main go-zero config names its larger blocks by file; each block is a
// Section that is hydrated from that file after the main config loads. Side
// files resolve against the main config's directory, so a config tree can be
// moved as a unit. ProjectRoot and LoadDotenvOnce locate the module root for
// tests and local runs.
package confkit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeromicro/go-zero/core/conf"
)

// ResolvePath expands $VAR and ${VAR} references in file, then joins the
// result to base. An absolute path, before or after expansion, is returned
// unchanged; unset variables expand to "".
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir is the directory side files of mainPath are resolved against. It is
// computed once when the main config loads and passed to Hydrate.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}

// LoadFile loads a go-zero config file (yaml, json or toml by extension) into
// a fresh T. With useEnv, ${VAR} references in the file are expanded before
// decoding. go-zero applies `default` tags and rejects missing non-optional
// fields, so the returned value has passed that layer of validation.
func LoadFile[T any](path string, useEnv bool) (*T, error) {
	var cfg T
	var opts []conf.Option
	if useEnv {
		opts = append(opts, conf.UseEnv())
	}
	if err := conf.Load(path, &cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// ErrSectionMissing is returned by Require for a section whose File is empty.
// Match it with errors.Is; the wrapped message names the section.
var ErrSectionMissing = errors.New("confkit: section file not set")

// Section is a config block kept in its own file.
//
// In the main config it appears as
//
//	Registry:
//	  File: registry.yaml
//
// File is relative to the main config unless absolute. Value is never read
// from the main config; it is filled by Hydrate or set directly by callers
// that build a config in code.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate loads File with loader. An empty File is a no-op and leaves Value
// as it was, which lets tests inject Value directly. On success File is
// replaced by the resolved path so later log lines show where the block came
// from. On error the section is left untouched.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return err
	}
	s.File, s.Value = p, v
	return nil
}

// Require is Hydrate for sections that must be present. name is the section's
// key in the main config and only appears in errors. A section whose Value
// was already set in code still needs a File; callers that build configs in
// code skip Require.
func (s *Section[T]) Require(name, base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return fmt.Errorf("%w: %s.file is required", ErrSectionMissing, name)
	}
	if err := s.Hydrate(base, loader); err != nil {
		return fmt.Errorf("load %s config: %w", name, err)
	}
	return nil
}
