package hostapi

import (
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/uid"
)

// nodeToLua converts a document.Node to its Lua-native representation:
// scalars become Lua scalars, identifiers become Identifier userdata,
// and documents/arrays become Lua tables (built recursively), so a
// script can read a nested value with plain table indexing instead of
// re-wrapping every level in a Document handle.
func nodeToLua(L *lua.LState, n document.Node) lua.LValue {
	switch n.Kind() {
	case document.KindNull:
		return lua.LNil
	case document.KindDouble:
		return lua.LNumber(n.AsDouble())
	case document.KindString:
		return lua.LString(n.AsString())
	case document.KindBool:
		return lua.LBool(n.AsBool())
	case document.KindInt32:
		return lua.LNumber(n.AsInt32())
	case document.KindInt64:
		return lua.LNumber(n.AsInt64())
	case document.KindTimestamp:
		return lua.LNumber(n.AsTimestamp())
	case document.KindID:
		return newIdentifier(L, n.AsID())
	case document.KindBinary:
		raw, _ := n.AsBinary()
		return lua.LString(raw)
	case document.KindRegex:
		rx := n.AsRegex()
		return lua.LString(rx.Pattern)
	case document.KindDocument, document.KindArray:
		return documentNodeToTable(L, n.AsDocument())
	default:
		return lua.LNil
	}
}

func documentNodeToTable(L *lua.LState, d *document.Document) *lua.LTable {
	tbl := L.NewTable()
	for _, key := range d.Keys() {
		child, _ := d.Child(key)
		val := nodeToLua(L, child)
		if idx, err := strconv.Atoi(key); err == nil && idx >= 0 {
			tbl.RawSetInt(idx+1, val)
			continue
		}
		tbl.RawSetString(key, val)
	}
	return tbl
}

// luaToNode converts a Lua value back to a document.Node. Numbers
// without a fractional part become int64 nodes; tables are classified
// as arrays when every key is a contiguous 1-based integer index,
// otherwise as sub-documents.
func luaToNode(lv lua.LValue) document.Node {
	switch v := lv.(type) {
	case *lua.LNilType:
		return document.NewNull()
	case lua.LBool:
		return document.NewBool(bool(v))
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return document.NewInt64(int64(f))
		}
		return document.NewDouble(f)
	case lua.LString:
		return document.NewString(string(v))
	case *lua.LUserData:
		if id, ok := v.Value.(uid.ID); ok {
			return document.NewID(id)
		}
		if doc, ok := v.Value.(*document.Document); ok {
			return document.NewDocumentNode(doc)
		}
		return document.NewNull()
	case *lua.LTable:
		return tableToNode(v)
	default:
		return document.NewNull()
	}
}

func tableToNode(tbl *lua.LTable) document.Node {
	n := tbl.Len()
	isArray := n > 0
	if isArray {
		tbl.ForEach(func(k, _ lua.LValue) {
			if num, ok := k.(lua.LNumber); !ok || num < 1 || float64(int(num)) != float64(num) || int(num) > n {
				isArray = false
			}
		})
	}

	out := document.New()
	if isArray {
		for i := 1; i <= n; i++ {
			out.SetChild(strconv.Itoa(i-1), luaToNode(tbl.RawGetInt(i)))
		}
		return document.NewArrayNode(out)
	}

	tbl.ForEach(func(k, val lua.LValue) {
		out.SetChild(k.String(), luaToNode(val))
	})
	return document.NewDocumentNode(out)
}
