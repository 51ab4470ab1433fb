package sandbox

import (
	"path/filepath"
	"sort"
	"strings"
)

const (
	// NamePrefix namespaces every derived container identity.
	NamePrefix = "claude"

	// DefaultIdentity is addressed when no container has ever been used.
	DefaultIdentity = "claude"

	// MaxNameLength bounds derived identities.
	MaxNameLength = 64
)

// Sanitize folds a folder name into the character set [a-z0-9_-].
// Uppercase ASCII letters are lowered and everything else is dropped.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Canonicalize resolves path to an absolute, symlink-free path.
// It fails when the path does not exist.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// DeriveName turns an ordered folder list into a container identity.
//
// Folder names are joined in input order, so reordering the same folders
// yields a different identity even though FolderKey stays the same.
// Folders that cannot be canonicalized or sanitize to nothing are skipped.
func DeriveName(folders []string) (string, error) {
	names := make([]string, 0, len(folders))
	for _, f := range folders {
		abs, err := Canonicalize(f)
		if err != nil {
			continue
		}
		if n := Sanitize(filepath.Base(abs)); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return "", ErrNoDerivableName
	}

	name := NamePrefix + "-" + strings.Join(names, "-")
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}
	return name, nil
}

// derivedFolderName is the identity a single folder called base would get.
func derivedFolderName(base string) string {
	return NamePrefix + "-" + Sanitize(base)
}

// CanonicalFolders canonicalizes folders in order, dropping any that fail.
func CanonicalFolders(folders []string) []string {
	paths := make([]string, 0, len(folders))
	for _, f := range folders {
		abs, err := Canonicalize(f)
		if err != nil {
			continue
		}
		paths = append(paths, abs)
	}
	return paths
}

// FolderKey is the order-independent registry key for a folder set.
func FolderKey(folders []string) string {
	paths := CanonicalFolders(folders)
	sort.Strings(paths)
	return strings.Join(paths, ":")
}
