package sandbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/everydev1618/claude-sandbox/internal/log"
)

// ContainerEntry records which folders a container was provisioned for.
type ContainerEntry struct {
	ContainerName string    `json:"container_name"`
	FolderPaths   []string  `json:"folder_paths"`
	CreatedAt     time.Time `json:"created_at"`
}

// FolderRegistry maps folder-set keys to container entries.
type FolderRegistry struct {
	Folders map[string]ContainerEntry `json:"folders"`
}

// SessionsRegistry maps session names to conversation identities.
type SessionsRegistry struct {
	Sessions map[string]string `json:"sessions"`
}

// Store is the handle on the persisted registries under one configuration root.
//
// The three documents are independent files written with read-modify-write and
// no cross-process locking: concurrent invocations are last-writer-wins.
type Store struct {
	layout Layout
	mu     sync.Mutex
	now    func() time.Time
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{layout: Layout{Root: dir}, now: time.Now}
}

// OpenDefaultStore creates a store at Home().
func OpenDefaultStore() (*Store, error) {
	root, err := Home()
	if err != nil {
		return nil, err
	}
	return NewStore(root), nil
}

// Layout returns the path layout of the store's root.
func (s *Store) Layout() Layout {
	return s.layout
}

// LastSession returns the most recently addressed container, or DefaultIdentity.
func (s *Store) LastSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.layout.LastSessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultIdentity, nil
		}
		return "", err
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return DefaultIdentity, nil
	}
	return name, nil
}

// HasLastSession reports whether a last session has ever been recorded.
func (s *Store) HasLastSession() bool {
	data, err := os.ReadFile(s.layout.LastSessionPath())
	return err == nil && strings.TrimSpace(string(data)) != ""
}

// SaveLastSession records name as the most recently addressed container.
func (s *Store) SaveLastSession(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.layout.EnsureHome(); err != nil {
		return err
	}
	return writeFileAtomic(s.layout.LastSessionPath(), []byte(name))
}

// LoadFolders reads the folder registry. A missing or corrupt document yields
// an empty registry.
func (s *Store) LoadFolders() (*FolderRegistry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFolders()
}

func (s *Store) loadFolders() (*FolderRegistry, error) {
	reg := &FolderRegistry{Folders: map[string]ContainerEntry{}}
	if err := loadDocument(s.layout.FolderRegistryPath(), reg); err != nil {
		if !errors.Is(err, ErrRegistryCorrupt) {
			return nil, err
		}
		log.Warn().Err(err).Str("path", s.layout.FolderRegistryPath()).Msg("folder registry unreadable, treating as empty")
		reg = &FolderRegistry{}
	}
	if reg.Folders == nil {
		reg.Folders = map[string]ContainerEntry{}
	}
	return reg, nil
}

// RegisterContainer stores the folder-set key of folders as provisioned by name.
// An existing entry under the same key is replaced, and any other key holding
// name is dropped so a container serves exactly one folder set.
func (s *Store) RegisterContainer(name string, folders []string) (ContainerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.loadFolders()
	if err != nil {
		return ContainerEntry{}, err
	}
	entry := ContainerEntry{
		ContainerName: name,
		FolderPaths:   CanonicalFolders(folders),
		CreatedAt:     s.now(),
	}
	key := FolderKey(folders)
	for k, e := range reg.Folders {
		if k != key && e.ContainerName == name {
			log.Debug().Str("container", name).Str("key", k).Msg("dropping stale folder set")
			delete(reg.Folders, k)
		}
	}
	reg.Folders[key] = entry

	if err := s.saveDocument(s.layout.FolderRegistryPath(), reg); err != nil {
		return ContainerEntry{}, err
	}
	log.Debug().Str("container", name).Str("key", key).Msg("registered folder set")
	return entry, nil
}

// LoadSessions reads the named-sessions registry. A missing or corrupt document
// yields an empty registry.
func (s *Store) LoadSessions() (*SessionsRegistry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSessions()
}

func (s *Store) loadSessions() (*SessionsRegistry, error) {
	reg := &SessionsRegistry{Sessions: map[string]string{}}
	if err := loadDocument(s.layout.SessionsPath(), reg); err != nil {
		if !errors.Is(err, ErrRegistryCorrupt) {
			return nil, err
		}
		log.Warn().Err(err).Str("path", s.layout.SessionsPath()).Msg("sessions registry unreadable, treating as empty")
		reg = &SessionsRegistry{}
	}
	if reg.Sessions == nil {
		reg.Sessions = map[string]string{}
	}
	return reg, nil
}

// NamedSession returns the conversation bound to name.
func (s *Store) NamedSession(name string) (string, bool, error) {
	reg, err := s.LoadSessions()
	if err != nil {
		return "", false, err
	}
	id, ok := reg.Sessions[name]
	return id, ok, nil
}

// SaveNamedSession binds name to conversationID, replacing any earlier binding.
func (s *Store) SaveNamedSession(name, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.loadSessions()
	if err != nil {
		return err
	}
	reg.Sessions[name] = conversationID
	if err := s.saveDocument(s.layout.SessionsPath(), reg); err != nil {
		return err
	}
	log.Debug().Str("session", name).Str("conversation", conversationID).Msg("bound named session")
	return nil
}

// Check reports corrupt registry documents without altering them.
func (s *Store) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if err := loadDocument(s.layout.FolderRegistryPath(), &FolderRegistry{}); err != nil {
		errs = append(errs, err)
	}
	if err := loadDocument(s.layout.SessionsPath(), &SessionsRegistry{}); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Store) saveDocument(path string, v any) error {
	if err := s.layout.EnsureHome(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// loadDocument decodes a JSON document into v. A missing file leaves v untouched.
func loadDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRegistryCorrupt, filepath.Base(path), err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Keys returns the registry keys in sorted order.
func (r *FolderRegistry) Keys() []string {
	keys := make([]string, 0, len(r.Folders))
	for k := range r.Folders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ByPath finds the container registered for a canonical folder path: first as
// a single-folder key, then as a member of any registered folder set.
func (r *FolderRegistry) ByPath(canonical string) (string, bool) {
	if e, ok := r.Folders[canonical]; ok {
		return e.ContainerName, true
	}
	for _, k := range r.Keys() {
		e := r.Folders[k]
		for _, p := range e.FolderPaths {
			if p == canonical {
				return e.ContainerName, true
			}
		}
	}
	return "", false
}

// ByFolderName finds a container by a bare folder name: first against the
// final component of every registered path, then against the name that
// folder would derive to.
func (r *FolderRegistry) ByFolderName(name string) (string, bool) {
	keys := r.Keys()
	for _, k := range keys {
		e := r.Folders[k]
		for _, p := range e.FolderPaths {
			if filepath.Base(p) == name {
				return e.ContainerName, true
			}
		}
	}
	return r.byDerivedName(name)
}

func (r *FolderRegistry) byDerivedName(name string) (string, bool) {
	if Sanitize(name) == "" {
		return "", false
	}
	expected := derivedFolderName(name)
	for _, k := range r.Keys() {
		e := r.Folders[k]
		if e.ContainerName == expected || strings.HasPrefix(e.ContainerName, expected+"-") {
			return e.ContainerName, true
		}
	}
	return "", false
}
