package widget

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kinotag-cli/kinotag/color"
	"github.com/kinotag-cli/kinotag/icon"
	"github.com/kinotag-cli/kinotag/style"
	"github.com/muesli/reflow/wrap"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *bubble) View() string {
	var output string

	switch b.state {
	case waitingState:
		output = b.viewWaiting()
	case resolvedState, ratingState:
		output = b.viewResolved()
	case missState:
		output = b.viewMiss()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.renderLines(output)
}

func (b *bubble) renderLines(body string) string {
	if b.width > 4 {
		body = wrap.String(body, b.width-4)
	}
	return paddingStyle.Render(body)
}

func (b *bubble) viewWaiting() string {
	return strings.Join([]string{
		style.Title("Watching"),
		"",
		b.spinnerC.View() + " Waiting for content..",
	}, "\n")
}

func (b *bubble) viewResolved() string {
	res := b.current

	kindIcon := icon.Get(icon.Film)
	if res.IsSeries {
		kindIcon = icon.Get(icon.Series)
	}

	lines := []string{
		style.Title("Identified"),
		"",
		fmt.Sprintf("%s %s", kindIcon, style.Bold(res.Info.String())),
	}

	if catalogued, ok := res.Catalogued.Get(); ok {
		if catalogued {
			lines = append(lines, fmt.Sprintf("%s In your catalog", icon.Get(icon.Success)))
		} else {
			lines = append(lines, style.Faint("Not in your catalog"))
		}
	}

	if res.CurrentEpisodeWatched || (!res.IsSeries && res.Watched) {
		lines = append(lines, fmt.Sprintf("%s Watched", icon.Get(icon.Watched)))
	} else {
		lines = append(lines, fmt.Sprintf("%s Not watched yet", icon.Get(icon.Unwatched)))
	}

	if res.Rated {
		lines = append(lines, fmt.Sprintf("%s Rated", icon.Get(icon.Rated)))
	}

	if season, ok := res.NextUnwatchedSeason.Get(); ok {
		if episode, eok := res.NextUnwatchedEpisode.Get(); eok {
			lines = append(lines, style.Faint(fmt.Sprintf("Next unwatched: S%dE%d", season, episode)))
		}
	}

	if res.HasUnwatchedBefore {
		lines = append(lines, style.Fg(color.Yellow)("There are unwatched episodes before this one"))
	}

	if res.Info.NoEpisodeDetected {
		lines = append(lines, style.Faint("Episode number could not be detected on this page"))
	}

	if res.Degraded {
		lines = append(lines, style.Fg(color.Yellow)("Catalog state could not be verified; progress shown may be stale"))
	}

	lines = append(lines, "")

	switch {
	case b.state == ratingState:
		lines = append(lines, fmt.Sprintf("%s Rate 1-9, 0 for a ten, esc to cancel", icon.Get(icon.Rated)))
	case b.busy:
		lines = append(lines, b.spinnerC.View()+" "+b.status)
	default:
		lines = append(lines, b.helpC.View(b.keymap))
	}

	return strings.Join(lines, "\n")
}

func (b *bubble) viewMiss() string {
	lines := []string{
		style.ErrorTitle("Not identified"),
		"",
		fmt.Sprintf("%s %s", icon.Get(icon.Fail), b.lastInfo.Title),
	}

	if b.lastErr != nil {
		lines = append(lines, style.Faint(b.lastErr.Error()))
	}

	lines = append(lines, "", style.Faint("Still watching for changes.."))
	return strings.Join(lines, "\n")
}

func (b *bubble) viewError() string {
	lines := []string{
		style.ErrorTitle("Error"),
		"",
	}
	if b.lastErr != nil {
		lines = append(lines, style.Fg(color.Red)(b.lastErr.Error()))
	}
	return strings.Join(lines, "\n")
}
