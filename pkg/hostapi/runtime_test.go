package hostapi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logjamd/logjamd/pkg/auth"
	"github.com/logjamd/logjamd/pkg/index"
	"github.com/logjamd/logjamd/pkg/registry"
	"github.com/logjamd/logjamd/pkg/vault"
)

func newTestRuntime(t *testing.T, mode vault.Mode) *Runtime {
	t.Helper()
	reg, err := registry.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	_, err = reg.Produce("people")
	require.NoError(t, err)
	_, err = reg.Configure("people", func(cfg *vault.Config) {
		cfg.Indexes = append(cfg.Indexes, vault.IndexSpec{
			Name: "by_name", Kind: index.Ordered, Path: "name", Comparator: index.Lexical,
		})
	})
	require.NoError(t, err)
	_, err = reg.Produce("people")
	require.NoError(t, err)

	return NewRuntime(reg, mode, "logjamd-1")
}

func TestPlaceThenAtRoundTrips(t *testing.T) {
	rt := newTestRuntime(t, vault.ModeReadWrite)

	script := `
		local doc = new_document()
		doc.name = "Ada"
		doc.email = "ada@example.com"
		local id = db.people:place(doc)
		local found = db.people:at(id)
		send_set(found)
	`
	result, err := rt.Execute(auth.User{Login: "admin"}, script)
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	require.Len(t, result.Results[0].Items, 1)
	require.Equal(t, "Ada", result.Results[0].Items[0].Get("name").AsString())
}

func TestPrintAppendsOutputLines(t *testing.T) {
	rt := newTestRuntime(t, vault.ModeReadWrite)
	result, err := rt.Execute(auth.User{Login: "admin"}, `print("Hello, world")`)
	require.NoError(t, err)
	require.Equal(t, []string{"Hello, world"}, result.Output)
}

func TestReadOnlyModeRejectsPlace(t *testing.T) {
	rt := newTestRuntime(t, vault.ModeReadOnly)
	_, err := rt.Execute(auth.User{Login: "admin"}, `
		local doc = new_document()
		doc.name = "Ada"
		db.people:place(doc)
	`)
	require.Error(t, err)
}

func TestRemoveMakesAtEmpty(t *testing.T) {
	rt := newTestRuntime(t, vault.ModeReadWrite)
	result, err := rt.Execute(auth.User{Login: "admin"}, `
		local doc = new_document()
		doc.name = "Grace"
		local id = db.people:place(doc)
		db.people:remove(doc)
		print(db.people:at(id):size())
	`)
	require.NoError(t, err)
	require.Equal(t, []string{"0"}, result.Output)
}

func TestUUIDMatchesKnownVector(t *testing.T) {
	rt := newTestRuntime(t, vault.ModeReadWrite)
	result, err := rt.Execute(auth.User{Login: "admin"}, `
		print(uuid(DNS_NS, "www.example.org"):tostring())
	`)
	require.NoError(t, err)
	require.Equal(t, []string{"74738ff5-5367-5958-9aee-98fffdcd1876"}, result.Output)
}
