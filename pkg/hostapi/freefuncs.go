package hostapi

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/pipeline"
)

const helpText = `Host API:
  Document:  new_document(), load_document(path), doc:get(), doc:set(path,v),
             doc:push(path,v), doc:nav(path), doc:save(path), doc.field
  Identifier: identifier(), uuid(ns,name), random_identifier([mixin]),
             identifier_from_string(s), DNS_NS, URL_NS
  Vault (db.<name>): all(), none(), at(id), place(doc), remove(doc),
             checkpoint(path), rebuild(), optimize()
  Result-set: mode_and(), mode_or(), include(id), exclude(id), equal(path,v),
             greater(path,v), lesser(path,v), tagged(path,v), contains(path,s),
             size(), first(), records()
  Free functions: print(...), send_item(doc), send_set(resultset), help()`

// callContext accumulates one command's output lines and surfaced
// result-sets; registerFreeFunctions binds it fresh for every Execute
// call so nothing leaks between commands.
type callContext struct {
	output  []string
	results []pipeline.ResultEntry
}

func registerFreeFunctions(L *lua.LState, ctx *callContext) {
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		line := parts[0]
		for _, p := range parts[1:] {
			line += "\t" + p
		}
		ctx.output = append(ctx.output, line)
		return 0
	}))

	L.SetGlobal("send_item", L.NewFunction(func(L *lua.LState) int {
		doc := checkDocumentHandle(L, 1)
		ctx.results = append(ctx.results, pipeline.ResultEntry{
			Cmd:   "send_item",
			Items: []*document.Document{doc.root},
		})
		return 0
	}))

	L.SetGlobal("send_set", L.NewFunction(func(L *lua.LState) int {
		h := checkResultSetHandle(L, 1)
		docs, err := h.rs.Records()
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		ctx.results = append(ctx.results, pipeline.ResultEntry{
			Cmd:   "send_set",
			Costs: h.rs.Costs(),
			Items: docs,
		})
		return 0
	}))

	L.SetGlobal("help", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(helpText))
		return 1
	}))
}
