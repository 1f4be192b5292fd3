// Package custom provides a bridge between the Go rule table and Lua-based site rule scripts.
//
// A rule script declares which hostnames it claims and how to extract content
// information from their pages. The required entry points are Domains and
// ExtractTitle; everything else is optional and falls back to the generic
// heuristics, exactly like a partially specified builtin rule.
package custom

import (
	"fmt"
	"path/filepath"

	"github.com/kinotag-cli/kinotag/constant"
	"github.com/kinotag-cli/kinotag/filesystem"
	"github.com/kinotag-cli/kinotag/internal/script"
	"github.com/kinotag-cli/kinotag/log"
	"github.com/kinotag-cli/kinotag/sites"
	"github.com/kinotag-cli/kinotag/util"
	"github.com/kinotag-cli/kinotag/where"
	libs "github.com/metafates/mangal-lua-libs"
	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"
)

// IDFromName generates a canonical rule identifier for a given Lua script basename.
func IDFromName(name string) string {
	return name + "-custom"
}

// LoadAll loads every Lua rule script from the rules directory and registers
// the resulting rules. Builtin rules are registered first, so a custom rule
// only wins hosts no builtin rule claims.
func LoadAll() {
	dir := where.Rules()

	entries, err := afero.ReadDir(filesystem.API(), dir)
	if err != nil {
		log.Error(err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}

		rule, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Warnf("skipping rule script %s: %v", entry.Name(), err)
			continue
		}

		sites.Register(rule)
	}
}

// Load executes and validates a Lua rule script, returning it wrapped as a rule.
func Load(path string) (*sites.Rule, error) {
	state := lua.NewState()
	libs.Preload(state)
	registerHTTPClient(state)

	if err := script.Run(state, path); err != nil {
		return nil, err
	}

	name := util.FileStem(path)

	required := []string{
		constant.RuleDomainsFn,
		constant.RuleTitleFn,
	}
	for _, fn := range required {
		if state.GetGlobal(fn).Type() != lua.LTFunction {
			return nil, fmt.Errorf("function %s is required but not defined in %s", fn, name)
		}
	}

	return newLuaRule(name, state)
}
