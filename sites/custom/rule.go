package custom

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kinotag-cli/kinotag/constant"
	"github.com/kinotag-cli/kinotag/log"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/sites"
	"github.com/samber/mo"
	lua "github.com/yuin/gopher-lua"
)

// luaRule executes rule entry points inside a single Lua state.
// LState is not safe for concurrent use; every call goes through the mutex.
type luaRule struct {
	name  string
	state *lua.LState
	mu    sync.Mutex
}

// newLuaRule wraps a validated Lua state as a rule. Domains are read once at
// load time; the per-page entry points are bound as closures.
func newLuaRule(name string, state *lua.LState) (*sites.Rule, error) {
	r := &luaRule{name: name, state: state}

	domains, err := r.domains()
	if err != nil {
		return nil, err
	}
	if len(domains) == 0 {
		return nil, fmt.Errorf("%s: %s returned no hostnames", name, constant.RuleDomainsFn)
	}

	rule := &sites.Rule{
		ID:      IDFromName(name),
		Name:    name,
		Domains: domains,
		Custom:  true,

		Title: func(s *page.Snapshot) mo.Option[string] {
			return r.stringOpt(constant.RuleTitleFn, s)
		},
	}

	if r.defines(constant.RuleIsValidPageFn) {
		rule.ValidPage = func(s *page.Snapshot) bool {
			return r.boolean(constant.RuleIsValidPageFn, s)
		}
	}
	if r.defines(constant.RuleIsSeriesFn) {
		rule.Series = func(s *page.Snapshot) bool {
			return r.boolean(constant.RuleIsSeriesFn, s)
		}
	}
	if r.defines(constant.RuleYearFn) {
		rule.Year = func(s *page.Snapshot) mo.Option[string] {
			return r.stringOpt(constant.RuleYearFn, s)
		}
	}
	if r.defines(constant.RuleSeasonEpisodeFn) {
		rule.SeasonEpisode = func(s *page.Snapshot) mo.Option[sites.SeasonEpisode] {
			return r.seasonEpisode(s)
		}
	}
	if r.defines(constant.RuleSearchTitleFn) {
		rule.SearchTitle = r.searchTitle
	}
	if r.defines(constant.RuleURLStemFn) {
		rule.URLStem = func(s *page.Snapshot) mo.Option[string] {
			return r.stringOpt(constant.RuleURLStemFn, s)
		}
	}

	return rule, nil
}

func (r *luaRule) defines(fn string) bool {
	return r.state.GetGlobal(fn).Type() == lua.LTFunction
}

// call invokes a Lua entry point and returns its single result.
func (r *luaRule) call(fn string, args ...lua.LValue) (lua.LValue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.state.CallByParam(lua.P{
		Fn:      r.state.GetGlobal(fn),
		NRet:    1,
		Protect: true,
	}, args...)
	if err != nil {
		return lua.LNil, fmt.Errorf("%s.%s: %w", r.name, fn, err)
	}

	value := r.state.Get(-1)
	r.state.Pop(1)
	return value, nil
}

// pageTable marshals a snapshot into the table rule scripts receive.
func (r *luaRule) pageTable(s *page.Snapshot) *lua.LTable {
	r.mu.Lock()
	defer r.mu.Unlock()

	html, _ := s.Doc.Html()

	tbl := r.state.NewTable()
	r.state.SetField(tbl, "url", lua.LString(s.URL.String()))
	r.state.SetField(tbl, "host", lua.LString(s.Hostname()))
	r.state.SetField(tbl, "path", lua.LString(s.URL.Path))
	r.state.SetField(tbl, "query", lua.LString(s.URL.RawQuery))
	r.state.SetField(tbl, "title", lua.LString(strings.TrimSpace(s.Doc.Find("title").First().Text())))
	r.state.SetField(tbl, "html", lua.LString(html))
	return tbl
}

func (r *luaRule) domains() ([]string, error) {
	value, err := r.call(constant.RuleDomainsFn)
	if err != nil {
		return nil, err
	}

	tbl, ok := value.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s.%s: expected a table, got %s", r.name, constant.RuleDomainsFn, value.Type())
	}

	var domains []string
	tbl.ForEach(func(_, v lua.LValue) {
		if d := strings.ToLower(strings.TrimSpace(v.String())); d != "" {
			domains = append(domains, d)
		}
	})
	return domains, nil
}

func (r *luaRule) boolean(fn string, s *page.Snapshot) bool {
	value, err := r.call(fn, r.pageTable(s))
	if err != nil {
		log.Warn(err)
		return false
	}
	return lua.LVAsBool(value)
}

func (r *luaRule) stringOpt(fn string, s *page.Snapshot) mo.Option[string] {
	value, err := r.call(fn, r.pageTable(s))
	if err != nil {
		log.Warn(err)
		return mo.None[string]()
	}
	if value == lua.LNil {
		return mo.None[string]()
	}
	if v := strings.TrimSpace(value.String()); v != "" {
		return mo.Some(v)
	}
	return mo.None[string]()
}

// seasonEpisode expects a {season=n, episode=n} table; a missing season
// defaults to 1, a missing episode voids the pair.
func (r *luaRule) seasonEpisode(s *page.Snapshot) mo.Option[sites.SeasonEpisode] {
	value, err := r.call(constant.RuleSeasonEpisodeFn, r.pageTable(s))
	if err != nil {
		log.Warn(err)
		return mo.None[sites.SeasonEpisode]()
	}

	tbl, ok := value.(*lua.LTable)
	if !ok {
		return mo.None[sites.SeasonEpisode]()
	}

	episode := int(lua.LVAsNumber(tbl.RawGetString("episode")))
	if episode <= 0 {
		return mo.None[sites.SeasonEpisode]()
	}

	season := int(lua.LVAsNumber(tbl.RawGetString("season")))
	if season <= 0 {
		season = 1
	}

	return mo.Some(sites.SeasonEpisode{Season: season, Episode: episode})
}

func (r *luaRule) searchTitle(title string) string {
	value, err := r.call(constant.RuleSearchTitleFn, lua.LString(title))
	if err != nil {
		log.Warn(err)
		return title
	}
	if v := strings.TrimSpace(value.String()); v != "" {
		return v
	}
	return title
}
