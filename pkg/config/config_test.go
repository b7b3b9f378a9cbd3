package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logjamd/logjamd/pkg/vault"
)

func TestDefaultEnablesEveryLevelButDebug(t *testing.T) {
	cfg := Default("/data")
	require.Equal(t, DefaultPort, cfg.Port)
	require.Equal(t, vault.ModeReadWrite, cfg.Mode)
	require.True(t, cfg.Logging["info"])
	require.False(t, cfg.Logging["debug"])
}

func TestDocumentRoundTrip(t *testing.T) {
	cfg := Config{
		Port:            9999,
		Directory:       "/var/lib/logjamd",
		ServerID:        "node-1",
		Mode:            vault.ModeReadOnly,
		StorageAutoload: []string{"people", "orders"},
		ReplicationPeer: []string{"10.0.0.2:27754"},
		Logging: map[string]bool{
			"error": true, "warning": true, "debug": true,
		},
	}

	decoded := FromDocument(cfg.ToDocument())

	require.Equal(t, cfg.Port, decoded.Port)
	require.Equal(t, cfg.Directory, decoded.Directory)
	require.Equal(t, cfg.ServerID, decoded.ServerID)
	require.Equal(t, cfg.Mode, decoded.Mode)
	require.Equal(t, cfg.StorageAutoload, decoded.StorageAutoload)
	require.Equal(t, cfg.ReplicationPeer, decoded.ReplicationPeer)
	require.True(t, decoded.Logging["debug"])
	require.True(t, decoded.Logging["error"])
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, DefaultPort, cfg.Port)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.ServerID = "node-7"
	cfg.Mode = vault.ModeReadOnly
	cfg.StorageAutoload = []string{"people"}
	require.NoError(t, cfg.Save())

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "node-7", loaded.ServerID)
	require.Equal(t, vault.ModeReadOnly, loaded.Mode)
	require.Equal(t, []string{"people"}, loaded.StorageAutoload)
}
