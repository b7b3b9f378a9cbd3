package hostapi

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/logjamd/logjamd/pkg/uid"
)

const identifierTypeName = "identifier"

// newIdentifier wraps id as Identifier userdata.
func newIdentifier(L *lua.LState, id uid.ID) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = id
	ud.Metatable = L.GetTypeMetatable(identifierTypeName)
	return ud
}

func checkIdentifier(L *lua.LState, n int) uid.ID {
	ud := L.CheckUserData(n)
	id, ok := ud.Value.(uid.ID)
	if !ok {
		L.RaiseError("%s", ErrWrongUserdata.Error())
	}
	return id
}

var identifierMethods = map[string]lua.LGFunction{
	"tostring": func(L *lua.LState) int {
		L.Push(lua.LString(checkIdentifier(L, 1).Canonical()))
		return 1
	},
	"int": func(L *lua.LState) int {
		L.Push(lua.LNumber(checkIdentifier(L, 1).Int64()))
		return 1
	},
	"bytes": func(L *lua.LState) int {
		L.Push(lua.LString(checkIdentifier(L, 1).Bytes()))
		return 1
	},
	"equal": func(L *lua.LState) int {
		a := checkIdentifier(L, 1)
		b := checkIdentifier(L, 2)
		L.Push(lua.LBool(a == b))
		return 1
	},
}

func registerIdentifierType(L *lua.LState) {
	mt := L.NewTypeMetatable(identifierTypeName)
	methods := L.SetFuncs(L.NewTable(), identifierMethods)
	L.SetField(mt, "__index", methods)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkIdentifier(L, 1).Canonical()))
		return 1
	}))
	L.SetField(mt, "__eq", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkIdentifier(L, 1) == checkIdentifier(L, 2)))
		return 1
	}))
}

// registerIdentifierGlobals binds the Identifier free-function
// constructors and the two well-known namespaces the core defines
//.
func registerIdentifierGlobals(L *lua.LState) {
	registerIdentifierType(L)

	L.SetGlobal("DNS_NS", newIdentifier(L, uid.DNS))
	L.SetGlobal("URL_NS", newIdentifier(L, uid.URL))

	L.SetGlobal("identifier", L.NewFunction(func(L *lua.LState) int {
		L.Push(newIdentifier(L, uid.Nil))
		return 1
	}))

	L.SetGlobal("uuid", L.NewFunction(func(L *lua.LState) int {
		ns := checkIdentifier(L, 1)
		name := L.CheckString(2)
		L.Push(newIdentifier(L, uid.FromNamespaceAndName(ns, []byte(name))))
		return 1
	}))

	L.SetGlobal("random_identifier", L.NewFunction(func(L *lua.LState) int {
		if L.GetTop() >= 1 {
			mixin := L.CheckNumber(1)
			L.Push(newIdentifier(L, uid.NewWithMixin(uint64(mixin))))
			return 1
		}
		L.Push(newIdentifier(L, uid.New()))
		return 1
	}))

	L.SetGlobal("identifier_from_string", L.NewFunction(func(L *lua.LState) int {
		s := L.CheckString(1)
		id, err := uid.FromCanonicalString(s)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(newIdentifier(L, id))
		return 1
	}))
}
