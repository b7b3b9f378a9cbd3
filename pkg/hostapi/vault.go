package hostapi

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/resultset"
	"github.com/logjamd/logjamd/pkg/uid"
	"github.com/logjamd/logjamd/pkg/vault"
)

const vaultTypeName = "vault"

// vaultHandle is a Vault userdata's payload: the underlying vault plus
// the server-wide mode gating its mutating operations.
type vaultHandle struct {
	v        *vault.Vault
	mode     vault.Mode
	serverID string
}

func newVaultHandle(L *lua.LState, h *vaultHandle) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = h
	ud.Metatable = L.GetTypeMetatable(vaultTypeName)
	return ud
}

func checkVaultHandle(L *lua.LState, n int) *vaultHandle {
	ud := L.CheckUserData(n)
	h, ok := ud.Value.(*vaultHandle)
	if !ok {
		L.RaiseError("%s", ErrWrongUserdata.Error())
	}
	return h
}

// docIdentifier reads the "__uid" field a document must carry to be
// placed or removed.
func docIdentifier(doc *document.Document) (uid.ID, bool) {
	n := doc.Get("__uid")
	if n.Kind() != document.KindID {
		return uid.Nil, false
	}
	return n.AsID(), true
}

// bumpClock increments the "__clock/<serverID>" mutation counter on doc,
// the per-document, per-server tally Place stamps on every write. Nothing
// in this tree reads it back; it exists for a future replication
// conflict resolver to consume.
func bumpClock(doc *document.Document, serverID string) {
	path := "__clock/" + serverID
	next := doc.Get(path).AsInt64() + 1
	doc.Set(path, document.NewInt64(next))
}

var vaultMethods = map[string]lua.LGFunction{
	"all": func(L *lua.LState) int {
		h := checkVaultHandle(L, 1)
		rs, err := resultset.All(h.v)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(newResultSetHandle(L, rs, h.v))
		return 1
	},
	"none": func(L *lua.LState) int {
		h := checkVaultHandle(L, 1)
		L.Push(newResultSetHandle(L, resultset.None(h.v), h.v))
		return 1
	},
	"at": func(L *lua.LState) int {
		h := checkVaultHandle(L, 1)
		id := checkIdentifier(L, 2)
		rs := resultset.None(h.v)
		if _, found, err := h.v.Fetch(id); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		} else if found {
			rs = rs.Include(id)
		}
		L.Push(newResultSetHandle(L, rs, h.v))
		return 1
	},
	"place": func(L *lua.LState) int {
		h := checkVaultHandle(L, 1)
		doc := checkDocumentHandle(L, 2)
		if err := vault.CheckMutable(h.mode); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		id, ok := docIdentifier(doc.root)
		if !ok {
			id = h.v.NextID()
			doc.root.Set("__uid", document.NewID(id))
		}
		bumpClock(doc.root, h.serverID)
		if err := h.v.Place(id, doc.root); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(newIdentifier(L, id))
		return 1
	},
	"remove": func(L *lua.LState) int {
		h := checkVaultHandle(L, 1)
		doc := checkDocumentHandle(L, 2)
		if err := vault.CheckMutable(h.mode); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		id, ok := docIdentifier(doc.root)
		if !ok {
			return 0
		}
		if err := h.v.Remove(id); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	},
	"checkpoint": func(L *lua.LState) int {
		h := checkVaultHandle(L, 1)
		dst := L.CheckString(2)
		if err := h.v.Checkpoint(dst); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	},
	"rebuild": func(L *lua.LState) int {
		h := checkVaultHandle(L, 1)
		if err := vault.CheckMutable(h.mode); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		if err := h.v.Rebuild(); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	},
	"optimize": func(L *lua.LState) int {
		h := checkVaultHandle(L, 1)
		if err := vault.CheckMutable(h.mode); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		if err := h.v.Optimize(); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	},
}

func registerVaultType(L *lua.LState) {
	mt := L.NewTypeMetatable(vaultTypeName)
	methods := L.SetFuncs(L.NewTable(), vaultMethods)
	L.SetField(mt, "__index", methods)
}
