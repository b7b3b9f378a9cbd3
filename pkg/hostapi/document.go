package hostapi

import (
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/logjamd/logjamd/pkg/document"
)

const documentTypeName = "document"

// docHandle is a Document userdata's payload: a pointer to the backing
// tree plus the path this particular handle was navigated to. Every
// handle derived from the same root (via nav, or implicitly via
// __index) shares the one underlying *document.Document, so a set
// through a child handle is visible through the root handle too.
type docHandle struct {
	root *document.Document
	path string
}

func joinPath(base, seg string) string {
	if base == "" {
		return seg
	}
	if seg == "" {
		return base
	}
	return base + "/" + seg
}

func (h *docHandle) node() document.Node {
	if h.path == "" {
		return document.NewDocumentNode(h.root)
	}
	return h.root.Get(h.path)
}

func newDocumentHandle(L *lua.LState, h *docHandle) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = h
	ud.Metatable = L.GetTypeMetatable(documentTypeName)
	return ud
}

func checkDocumentHandle(L *lua.LState, n int) *docHandle {
	ud := L.CheckUserData(n)
	h, ok := ud.Value.(*docHandle)
	if !ok {
		L.RaiseError("%s", ErrWrongUserdata.Error())
	}
	return h
}

var documentMethods = map[string]lua.LGFunction{
	// get returns the Lua-native value at this handle's path: a scalar,
	// an Identifier, or a table for a document/array node.
	"get": func(L *lua.LState) int {
		h := checkDocumentHandle(L, 1)
		L.Push(nodeToLua(L, h.node()))
		return 1
	},
	// set writes value at subpath (relative to this handle), creating
	// intermediate sub-documents as needed.
	"set": func(L *lua.LState) int {
		h := checkDocumentHandle(L, 1)
		subpath := L.CheckString(2)
		value := L.CheckAny(3)
		h.root.Set(joinPath(h.path, subpath), luaToNode(value))
		return 0
	},
	// push appends value to the array at subpath, creating it if absent.
	"push": func(L *lua.LState) int {
		h := checkDocumentHandle(L, 1)
		subpath := L.CheckString(2)
		value := L.CheckAny(3)
		h.root.Push(joinPath(h.path, subpath), luaToNode(value))
		return 0
	},
	// nav returns a new Document handle scoped to subpath, sharing this
	// handle's root.
	"nav": func(L *lua.LState) int {
		h := checkDocumentHandle(L, 1)
		subpath := L.CheckString(2)
		L.Push(newDocumentHandle(L, &docHandle{root: h.root, path: joinPath(h.path, subpath)}))
		return 1
	},
	// save encodes the whole document (not just this handle's subtree)
	// and writes it to filename.
	"save": func(L *lua.LState) int {
		h := checkDocumentHandle(L, 1)
		filename := L.CheckString(2)
		if err := os.WriteFile(filename, h.root.Encode(), 0o600); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	},
}

func registerDocumentType(L *lua.LState) {
	mt := L.NewTypeMetatable(documentTypeName)
	methods := L.SetFuncs(L.NewTable(), documentMethods)

	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		h := checkDocumentHandle(L, 1)
		key := L.CheckString(2)
		if fn := methods.RawGetString(key); fn != lua.LNil {
			L.Push(fn)
			return 1
		}
		L.Push(newDocumentHandle(L, &docHandle{root: h.root, path: joinPath(h.path, key)}))
		return 1
	}))

	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		h := checkDocumentHandle(L, 1)
		key := L.CheckString(2)
		value := L.CheckAny(3)
		h.root.Set(joinPath(h.path, key), luaToNode(value))
		return 0
	}))

	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		h := checkDocumentHandle(L, 1)
		n := h.node()
		switch n.Kind() {
		case document.KindDocument, document.KindArray:
			L.Push(lua.LString(n.AsDocument().ToJSON()))
		case document.KindID:
			L.Push(lua.LString(n.AsID().Canonical()))
		default:
			L.Push(lua.LString(nodeToLua(L, n).String()))
		}
		return 1
	}))
}

// registerDocumentGlobals binds the Document constructors: new_document
// builds an empty document, load_document reads one back from disk
//.
func registerDocumentGlobals(L *lua.LState) {
	registerDocumentType(L)

	L.SetGlobal("new_document", L.NewFunction(func(L *lua.LState) int {
		L.Push(newDocumentHandle(L, &docHandle{root: document.New()}))
		return 1
	}))

	L.SetGlobal("load_document", L.NewFunction(func(L *lua.LState) int {
		filename := L.CheckString(1)
		raw, err := os.ReadFile(filename)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		doc, err := document.Decode(raw)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(newDocumentHandle(L, &docHandle{root: doc}))
		return 1
	}))
}
