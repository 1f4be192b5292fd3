// Package script compiles and executes Lua rule scripts with bytecode caching.
package script

import (
	"sync"

	"github.com/kinotag-cli/kinotag/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

var bytecodeCache sync.Map

// Run executes a Lua script within the provided LState, utilizing a bytecode
// cache to minimize compilation overhead when the same script is loaded again.
func Run(L *lua.LState, path string) error {
	if cached, exists := bytecodeCache.Load(path); exists {
		fn := L.NewFunctionFromProto(cached.(*lua.FunctionProto))
		L.Push(fn)
		return L.PCall(0, lua.MultRet, nil)
	}

	file, err := filesystem.API().Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	chunk, err := parse.Parse(file, path)
	if err != nil {
		return err
	}

	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return err
	}

	bytecodeCache.Store(path, proto)

	fn := L.NewFunctionFromProto(proto)
	L.Push(fn)
	return L.PCall(0, lua.MultRet, nil)
}
