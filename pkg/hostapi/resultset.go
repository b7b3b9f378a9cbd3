package hostapi

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/index"
	"github.com/logjamd/logjamd/pkg/resultset"
	"github.com/logjamd/logjamd/pkg/vault"
)

const resultSetTypeName = "resultset"

// rsHandle is a Result-set userdata's payload. It keeps its owning
// vault alongside the set so filter methods can resolve a document
// path to the index configured for it (resultset.ResultSet itself only
// accepts already-encoded key bytes).
type rsHandle struct {
	rs *resultset.ResultSet
	v  *vault.Vault
}

func newResultSetHandle(L *lua.LState, rs *resultset.ResultSet, v *vault.Vault) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = &rsHandle{rs: rs, v: v}
	ud.Metatable = L.GetTypeMetatable(resultSetTypeName)
	return ud
}

func checkResultSetHandle(L *lua.LState, n int) *rsHandle {
	ud := L.CheckUserData(n)
	h, ok := ud.Value.(*rsHandle)
	if !ok {
		L.RaiseError("%s", ErrWrongUserdata.Error())
	}
	return h
}

// keyBytes encodes a Lua filter value into index-key bytes matching
// path's configured comparator, the same convention Vault.Place uses
// to build its index keys.
func keyBytes(v *vault.Vault, path string, lv lua.LValue) []byte {
	idx, ok := v.IndexForPath(path)
	cmp := index.Lexical
	if ok {
		cmp = idx.Comparator
	}
	n := luaToNode(lv)
	switch cmp {
	case index.Int32:
		var i32 int32
		switch n.Kind() {
		case document.KindInt32:
			i32 = n.AsInt32()
		case document.KindInt64:
			i32 = int32(n.AsInt64()) //nolint:gosec // narrowing matches the index's own comparator choice
		case document.KindDouble:
			i32 = int32(n.AsDouble())
		}
		return index.EncodeInt32Key(i32)
	case index.Int64:
		var i64 int64
		switch n.Kind() {
		case document.KindInt64:
			i64 = n.AsInt64()
		case document.KindInt32:
			i64 = int64(n.AsInt32())
		case document.KindTimestamp:
			i64 = n.AsTimestamp()
		case document.KindDouble:
			i64 = int64(n.AsDouble())
		}
		return index.EncodeInt64Key(i64)
	default:
		switch n.Kind() {
		case document.KindString:
			return []byte(n.AsString())
		case document.KindID:
			return n.AsID().Bytes()
		case document.KindBool:
			if n.AsBool() {
				return []byte{1}
			}
			return []byte{0}
		default:
			return nil
		}
	}
}

var resultSetMethods = map[string]lua.LGFunction{
	"mode_and": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		h.rs.ModeAnd()
		L.Push(L.Get(1))
		return 1
	},
	"mode_or": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		h.rs.ModeOr()
		L.Push(L.Get(1))
		return 1
	},
	"include": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		id := checkIdentifier(L, 2)
		h.rs.Include(id)
		L.Push(L.Get(1))
		return 1
	},
	"exclude": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		id := checkIdentifier(L, 2)
		h.rs.Exclude(id)
		L.Push(L.Get(1))
		return 1
	},
	"equal": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		path := L.CheckString(2)
		key := keyBytes(h.v, path, L.CheckAny(3))
		if _, err := h.rs.Equal(path, key); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(L.Get(1))
		return 1
	},
	"greater": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		path := L.CheckString(2)
		key := keyBytes(h.v, path, L.CheckAny(3))
		if _, err := h.rs.Greater(path, key); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(L.Get(1))
		return 1
	},
	"lesser": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		path := L.CheckString(2)
		key := keyBytes(h.v, path, L.CheckAny(3))
		if _, err := h.rs.Lesser(path, key); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(L.Get(1))
		return 1
	},
	"tagged": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		path := L.CheckString(2)
		key := keyBytes(h.v, path, L.CheckAny(3))
		if _, err := h.rs.Tagged(path, key); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(L.Get(1))
		return 1
	},
	"contains": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		path := L.CheckString(2)
		substr := L.CheckString(3)
		if _, err := h.rs.Contains(path, []byte(substr)); err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(L.Get(1))
		return 1
	},
	"size": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		L.Push(lua.LNumber(h.rs.Size()))
		return 1
	},
	"first": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		doc, ok, err := h.rs.First()
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(newDocumentHandle(L, &docHandle{root: doc}))
		return 1
	},
	"records": func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		docs, err := h.rs.Records()
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		tbl := L.NewTable()
		for _, doc := range docs {
			tbl.Append(newDocumentHandle(L, &docHandle{root: doc}))
		}
		L.Push(tbl)
		return 1
	},
}

func registerResultSetType(L *lua.LState) {
	mt := L.NewTypeMetatable(resultSetTypeName)
	methods := L.SetFuncs(L.NewTable(), resultSetMethods)
	L.SetField(mt, "__index", methods)
}
