// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

// RuleTemplate is a Go text/template for scaffolding new Lua site rule files.
const RuleTemplate = `{{ $divider := repeat "-" (plus (max (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias page { url: string, host: string, path: string, query: string, title: string, html: string }


----- MAIN -----

--- Hostnames this rule claims, including subdomains.
-- @return string[] Table of hostnames
function {{ .DomainsFn }}()
	return {}
end


--- Extracts the display title from a content page.
-- @param page page The page snapshot
-- @return string|nil The title, or nil when none is present
function {{ .TitleFn }}(page)
	return nil
end


--- Optional. Rejects catalog, home and profile pages.
-- @param page page The page snapshot
-- @return boolean
-- function {{ .IsValidPageFn }}(page)
-- 	return true
-- end


--- Optional. Extracts the season and episode pair.
-- @param page page The page snapshot
-- @return { season: number, episode: number }|nil
-- function {{ .SeasonEpisodeFn }}(page)
-- 	return nil
-- end

--- END MAIN ---

-- ex: ts=4 sw=4 et filetype=lua
`
