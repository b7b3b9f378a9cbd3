// Package config loads and saves the per-server configuration document:
// a document.Document at <data_directory>/config encoding
// the listen port, data directory, server identifier, operating mode,
// the set of vaults to autoload at startup, preserved-but-unused
// replication peers, and per-level logging toggles. It mirrors the way
// a vault's own configuration document round-trips through
// vault.ConfigFromDocument/Config.ToDocument, applied one level up to
// the server as a whole.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/vault"
)

// DefaultPort is the TCP port a server listens on absent any other
// configuration.
const DefaultPort = 27754

// fileName is the config document's name within the data directory.
const fileName = "config"

// LogLevels enumerates the boolean logging/<level> toggles the
// configuration document recognizes, in the original's own priority
// order.
var LogLevels = []string{
	"emergency", "alert", "critical", "error",
	"warning", "notice", "info", "debug",
}

// Config is a server's resolved configuration.
type Config struct {
	Port            int
	Directory       string
	ServerID        string
	Mode            vault.Mode
	StorageAutoload []string
	ReplicationPeer []string
	Logging         map[string]bool
}

// Default returns a Config with sane defaults: the well-known
// port, read-write mode, and every log level but debug enabled.
func Default(directory string) Config {
	logging := make(map[string]bool, len(LogLevels))
	for _, level := range LogLevels {
		logging[level] = level != "debug"
	}
	return Config{
		Port:      DefaultPort,
		Directory: directory,
		Mode:      vault.ModeReadWrite,
		Logging:   logging,
	}
}

func modeFromName(s string) vault.Mode {
	switch s {
	case "config":
		return vault.ModeConfig
	case "readonly":
		return vault.ModeReadOnly
	default:
		return vault.ModeReadWrite
	}
}

// FromDocument decodes a Config from its document representation.
func FromDocument(d *document.Document) Config {
	cfg := Config{Logging: make(map[string]bool, len(LogLevels))}

	if port := d.Get("server/port"); !port.IsNull() {
		cfg.Port = int(port.AsInt32())
	} else {
		cfg.Port = DefaultPort
	}
	cfg.Directory = d.Get("server/directory").AsString()
	cfg.ServerID = d.Get("server/id").AsString()
	cfg.Mode = modeFromName(d.Get("server/mode").AsString())

	autoload := d.Get("storage/autoload").AsDocument()
	for _, k := range autoload.Keys() {
		cfg.StorageAutoload = append(cfg.StorageAutoload, autoload.Get(k).AsString())
	}

	peers := d.Get("replication/peer").AsDocument()
	for _, k := range peers.Keys() {
		cfg.ReplicationPeer = append(cfg.ReplicationPeer, peers.Get(k).AsString())
	}

	for _, level := range LogLevels {
		node := d.Get("logging/" + level)
		if node.IsNull() {
			cfg.Logging[level] = level != "debug"
			continue
		}
		cfg.Logging[level] = node.AsBool()
	}

	return cfg
}

// ToDocument encodes cfg to its document representation.
func (cfg Config) ToDocument() *document.Document {
	d := document.New()
	d.Set("server/port", document.NewInt32(int32(cfg.Port)))
	d.Set("server/directory", document.NewString(cfg.Directory))
	d.Set("server/id", document.NewString(cfg.ServerID))
	d.Set("server/mode", document.NewString(cfg.Mode.String()))

	for _, name := range cfg.StorageAutoload {
		d.Push("storage/autoload", document.NewString(name))
	}
	for _, peer := range cfg.ReplicationPeer {
		d.Push("replication/peer", document.NewString(peer))
	}
	for _, level := range LogLevels {
		enabled, ok := cfg.Logging[level]
		if !ok {
			enabled = level != "debug"
		}
		d.Set("logging/"+level, document.NewBool(enabled))
	}
	return d
}

func path(directory string) string {
	return filepath.Join(directory, fileName)
}

// Load reads and decodes the configuration document at
// <directory>/config. If the file does not exist, Load returns
// Default(directory) rather than an error: a fresh data directory has
// no configuration yet, and the server should still boot with sane
// defaults (the CLI's [port] [directory] positional args then override
// server/port and server/directory in memory).
func Load(directory string) (Config, error) {
	raw, err := os.ReadFile(path(directory))
	if os.IsNotExist(err) {
		return Default(directory), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", directory, err)
	}
	doc, err := document.Decode(raw)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", directory, err)
	}
	return FromDocument(doc), nil
}

// Save encodes cfg and writes it to <cfg.Directory>/config, creating
// the directory if necessary.
func (cfg Config) Save() error {
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return fmt.Errorf("config: save %s: %w", cfg.Directory, err)
	}
	if err := os.WriteFile(path(cfg.Directory), cfg.ToDocument().Encode(), 0o600); err != nil {
		return fmt.Errorf("config: save %s: %w", cfg.Directory, err)
	}
	return nil
}
