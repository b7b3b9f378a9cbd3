package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/kv"
	"github.com/logjamd/logjamd/pkg/vault"
)

const (
	dataFile   = "data"
	configFile = "config"
)

type entry struct {
	db *kv.DB
	v  *vault.Vault
}

// Registry is the process-wide name-to-Vault map.
// A server owns one Registry; tests construct their own, scoped to a
// temporary directory.
type Registry struct {
	mu     sync.RWMutex
	dir    string
	vaults map[string]*entry
}

// Open returns a Registry rooted at dir, creating dir if necessary. It
// does not eagerly open any vault; call Produce or Recall per name.
func Open(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", dir, err)
	}
	return &Registry{dir: dir, vaults: make(map[string]*entry)}, nil
}

func (r *Registry) vaultDir(name string) string { return filepath.Join(r.dir, name) }

// Produce returns the named vault: lazy open, memoized. If it is
// already held open in this registry, the memoized Vault is returned
// unchanged. Otherwise Produce opens it from disk, reading whatever
// configuration document is persisted at <dir>/<name>/config — or, on
// a name with no such directory yet, starting from an empty default
// configuration and persisting it — the "autoload" behavior the
// `storage/autoload` configuration flag selects.
func (r *Registry) Produce(name string) (*vault.Vault, error) {
	r.mu.RLock()
	if e, ok := r.vaults[name]; ok {
		r.mu.RUnlock()
		return e.v, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.vaults[name]; ok {
		return e.v, nil
	}

	dir := r.vaultDir(name)
	cfg, err := loadConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("registry: produce %s: %w", name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("registry: produce %s: %w", name, err)
	}
	if err := saveConfig(dir, cfg); err != nil {
		return nil, fmt.Errorf("registry: produce %s: %w", name, err)
	}

	db, err := kv.Open(filepath.Join(dir, dataFile))
	if err != nil {
		return nil, fmt.Errorf("registry: produce %s: %w", name, err)
	}
	v, err := vault.Open(db, name, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("registry: produce %s: %w", name, err)
	}

	r.vaults[name] = &entry{db: db, v: v}
	return v, nil
}

// Configure rewrites name's persisted configuration document: mutate
// receives the document's currently decoded Config (the zero Config if
// nothing is persisted yet) and may add or remove indexes, sub-fields,
// or event handlers. Configure saves the result and then calls Recall
// on name, so the next Produce opens a fresh Vault against the updated
// configuration rather than continuing to serve the Vault already
// memoized under the old one.
func (r *Registry) Configure(name string, mutate func(cfg *vault.Config)) (vault.Config, error) {
	r.mu.Lock()
	dir := r.vaultDir(name)
	cfg, err := loadConfig(dir)
	if err != nil {
		r.mu.Unlock()
		return vault.Config{}, fmt.Errorf("registry: configure %s: %w", name, err)
	}
	mutate(&cfg)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.mu.Unlock()
		return vault.Config{}, fmt.Errorf("registry: configure %s: %w", name, err)
	}
	if err := saveConfig(dir, cfg); err != nil {
		r.mu.Unlock()
		return vault.Config{}, fmt.Errorf("registry: configure %s: %w", name, err)
	}
	r.mu.Unlock()

	if err := r.Recall(name); err != nil && !errors.Is(err, ErrUnknownVault) {
		return vault.Config{}, fmt.Errorf("registry: configure %s: %w", name, err)
	}
	return cfg, nil
}

// Names returns the names of every vault currently open in this
// registry, sorted lexically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.vaults))
	for name := range r.vaults {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Recall closes and forgets the named vault, but leaves its data on
// disk; a later Produce reopens it, re-reading whatever configuration
// document is on disk at that time.
func (r *Registry) Recall(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.vaults[name]
	if !ok {
		return fmt.Errorf("registry: recall %s: %w", name, ErrUnknownVault)
	}
	delete(r.vaults, name)
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("registry: recall %s: %w", name, err)
	}
	return nil
}

// CheckpointAll writes a consistent backend snapshot for every open
// vault into destDir, one file per vault named after it.
func (r *Registry) CheckpointAll(destDir string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("registry: checkpoint: %w", err)
	}
	for name, e := range r.vaults {
		dst := filepath.Join(destDir, name+".bak")
		if err := e.v.Checkpoint(dst); err != nil {
			return fmt.Errorf("registry: checkpoint %s: %w", name, err)
		}
	}
	return nil
}

// Close closes every vault's backend file.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for name, e := range r.vaults {
		if err := e.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("registry: close %s: %w", name, err)
		}
	}
	r.vaults = make(map[string]*entry)
	return firstErr
}

func saveConfig(dir string, cfg vault.Config) error {
	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, cfg.ToDocument().Encode(), 0o600); err != nil {
		return fmt.Errorf("registry: save config: %w", err)
	}
	return nil
}

func loadConfig(dir string) (vault.Config, error) {
	path := filepath.Join(dir, configFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return vault.Config{}, nil
		}
		return vault.Config{}, fmt.Errorf("registry: load config: %w", err)
	}
	doc, err := document.Decode(raw)
	if err != nil {
		return vault.Config{}, fmt.Errorf("registry: load config: %w", err)
	}
	return vault.ConfigFromDocument(doc), nil
}
