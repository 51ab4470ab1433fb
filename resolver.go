package sandbox

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver turns a user-supplied target into a container identity.
type Resolver struct {
	store *Store
}

// NewResolver creates a resolver backed by store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps target to a container identity. The fallbacks are tried in order:
//
//  1. empty target: the last used container, or DefaultIdentity
//  2. an existing directory: its registered container, or a freshly derived name
//  3. a string starting with NamePrefix: taken literally
//  4. a bare folder name known to the folder registry
//  5. anything else: taken literally
//
// Resolving never writes the folder registry.
func (r *Resolver) Resolve(target string) (string, error) {
	if target == "" {
		return r.store.LastSession()
	}

	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return r.resolveDir(target)
	}

	if strings.HasPrefix(target, NamePrefix) {
		return target, nil
	}

	reg, err := r.store.LoadFolders()
	if err != nil {
		return "", err
	}
	if name, ok := reg.ByFolderName(target); ok {
		return name, nil
	}
	return target, nil
}

func (r *Resolver) resolveDir(dir string) (string, error) {
	canonical, err := Canonicalize(dir)
	if err != nil {
		return DeriveName([]string{dir})
	}

	reg, err := r.store.LoadFolders()
	if err != nil {
		return "", err
	}
	if name, ok := reg.ByPath(canonical); ok {
		return name, nil
	}
	if name, ok := reg.byDerivedName(filepath.Base(canonical)); ok {
		return name, nil
	}
	return DeriveName([]string{dir})
}
