package hostapi

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/logjamd/logjamd/pkg/auth"
	"github.com/logjamd/logjamd/pkg/pipeline"
	"github.com/logjamd/logjamd/pkg/registry"
	"github.com/logjamd/logjamd/pkg/vault"
)

// Runtime implements pipeline.Executor on top of an embedded Lua state
// built fresh for every command: the state gets the Document and
// Identifier constructors, a db table binding every vault currently
// open in the registry, and the print/send_item/send_set/help free
// functions, then runs the command string. Nothing
// persists between calls, so one script's globals never leak into the
// next command — including one from a different connection.
type Runtime struct {
	registry *registry.Registry
	mode     vault.Mode
	serverID string
}

// NewRuntime returns a Runtime dispatching against reg under mode (the
// server-wide `server/mode` configuration value). serverID is stamped
// into every placed document's "__clock/<serverID>" mutation counter.
func NewRuntime(reg *registry.Registry, mode vault.Mode, serverID string) *Runtime {
	return &Runtime{registry: reg, mode: mode, serverID: serverID}
}

// Execute implements pipeline.Executor.
func (r *Runtime) Execute(user auth.User, command string) (pipeline.ExecutionResult, error) {
	L := lua.NewState()
	defer L.Close()
	L.OpenLibs()

	registerDocumentGlobals(L)
	registerIdentifierGlobals(L)
	registerVaultType(L)
	registerResultSetType(L)

	ctx := &callContext{}
	registerFreeFunctions(L, ctx)
	r.bindVaults(L)
	L.SetGlobal("current_user", lua.LString(user.Login))

	err := L.DoString(command)
	return pipeline.ExecutionResult{Output: ctx.output, Results: ctx.results}, err
}

// bindVaults binds every vault currently open in the registry as
// db.<name>, the convention scripts rely on for access. A
// lookup against any other name raises ErrNoSuchVault, a clearer
// script-facing error than Lua's own "attempt to index a nil value".
func (r *Runtime) bindVaults(L *lua.LState) {
	db := L.NewTable()
	for _, name := range r.registry.Names() {
		v, err := r.registry.Produce(name)
		if err != nil {
			continue
		}
		db.RawSetString(name, newVaultHandle(L, &vaultHandle{v: v, mode: r.mode, serverID: r.serverID}))
	}

	mt := L.NewTable()
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(2)
		L.RaiseError("%s: %q", ErrNoSuchVault.Error(), name)
		return 0
	}))
	L.SetMetatable(db, mt)
	L.SetGlobal("db", db)
}
