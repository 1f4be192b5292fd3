package widget

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kinotag-cli/kinotag/key"
	"github.com/kinotag-cli/kinotag/log"
	"github.com/kinotag-cli/kinotag/lookup"
	"github.com/kinotag-cli/kinotag/open"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/resolver"
	"github.com/spf13/viper"
)

type state int

const (
	waitingState state = iota
	resolvedState
	missState
	ratingState
	errorState
)

type (
	resolvedMsg struct{ resolved *resolver.Resolved }
	missMsg     struct {
		info page.ContentInfo
		err  error
	}
	errorMsg   struct{ err error }
	actionMsg  struct{ status string }
	actionDone struct {
		resolved *resolver.Resolved
		err      error
	}
)

// bubble is the widget's bubbletea model. It renders whatever the detection
// session last committed and turns key presses into catalog actions.
type bubble struct {
	state  state
	keymap *keymap

	spinnerC spinner.Model
	helpC    help.Model

	service  lookup.Service
	resolver *resolver.Resolver
	events   chan tea.Msg

	current  *resolver.Resolved
	lastInfo page.ContentInfo
	lastErr  error
	status   string
	busy     bool

	width int
}

func newBubble(opts *Options, events chan tea.Msg) *bubble {
	spinnerC := spinner.New()
	spinnerC.Spinner = spinner.Dot

	return &bubble{
		state:    waitingState,
		keymap:   newKeymap(),
		spinnerC: spinnerC,
		helpC:    help.New(),
		service:  opts.Service,
		resolver: opts.Resolver,
		events:   events,
	}
}

func (b *bubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.waitForEvent())
}

// waitForEvent relays one session callback into the bubbletea loop.
func (b *bubble) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-b.events
	}
}

func (b *bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.helpC.Width = msg.Width
		return b, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd

	case resolvedMsg:
		b.current = msg.resolved
		b.lastErr = nil
		b.busy = false
		b.status = ""
		b.state = resolvedState
		return b, b.waitForEvent()

	case missMsg:
		b.lastInfo = msg.info
		b.lastErr = msg.err
		b.state = missState
		return b, b.waitForEvent()

	case errorMsg:
		b.lastErr = msg.err
		b.state = errorState
		return b, b.waitForEvent()

	case actionMsg:
		b.busy = true
		b.status = msg.status
		return b, nil

	case actionDone:
		b.busy = false
		b.status = ""
		if msg.err != nil {
			log.Error(msg.err)
			b.lastErr = msg.err
			return b, nil
		}
		if msg.resolved != nil {
			b.current = msg.resolved
			b.state = resolvedState
		}
		return b, nil

	case tea.KeyMsg:
		return b.handleKey(msg)
	}

	return b, nil
}

func (b *bubble) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if bubblesKey.Matches(msg, b.keymap.forceQuit) {
		return b, tea.Quit
	}

	if b.state == ratingState {
		return b.handleRatingKey(msg)
	}

	switch {
	case bubblesKey.Matches(msg, b.keymap.quit):
		return b, tea.Quit

	case bubblesKey.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return b, nil

	case bubblesKey.Matches(msg, b.keymap.toggleWatched):
		if b.current == nil || b.busy {
			return b, nil
		}
		return b, tea.Batch(
			func() tea.Msg { return actionMsg{status: "Updating watched state.."} },
			b.toggleWatched(),
		)

	case bubblesKey.Matches(msg, b.keymap.rate):
		if b.current == nil || b.busy {
			return b, nil
		}
		b.state = ratingState
		return b, nil

	case bubblesKey.Matches(msg, b.keymap.refresh):
		if b.current == nil || b.busy {
			return b, nil
		}
		return b, tea.Batch(
			func() tea.Msg { return actionMsg{status: "Refreshing.."} },
			b.reResolve(b.current.Info),
		)

	case bubblesKey.Matches(msg, b.keymap.openURL):
		if b.current == nil {
			return b, nil
		}
		url := fmt.Sprintf("%s/records/%s", viper.GetString(key.LookupBaseURL), b.current.CanonicalID)
		if err := open.Start(url); err != nil {
			log.Error(err)
		}
		return b, nil
	}

	return b, nil
}

// handleRatingKey reads a single digit as the rating: 1-9, or 0 for a ten.
func (b *bubble) handleRatingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if bubblesKey.Matches(msg, b.keymap.back, b.keymap.quit) {
		b.state = resolvedState
		return b, nil
	}

	s := msg.String()
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return b, nil
	}

	rating := int(s[0] - '0')
	if rating == 0 {
		rating = 10
	}

	b.state = resolvedState
	return b, tea.Batch(
		func() tea.Msg { return actionMsg{status: "Saving rating.."} },
		b.setRating(rating),
	)
}

// toggleWatched flips the current episode's watched state and refreshes the
// resolution so the view reflects the catalog's answer, not an assumption.
func (b *bubble) toggleWatched() tea.Cmd {
	current := b.current
	return func() tea.Msg {
		hints := lookup.Hints{Season: current.Info.Season, Episode: current.Info.Episode}
		err := b.service.SetWatched(current.CanonicalID, hints, !current.CurrentEpisodeWatched)
		if err != nil {
			return actionDone{err: err}
		}

		res, err := b.resolver.Resolve(current.Info)
		return actionDone{resolved: res, err: err}
	}
}

func (b *bubble) setRating(rating int) tea.Cmd {
	current := b.current
	return func() tea.Msg {
		if err := b.service.SetRating(current.CanonicalID, rating); err != nil {
			return actionDone{err: err}
		}

		res, err := b.resolver.Resolve(current.Info)
		return actionDone{resolved: res, err: err}
	}
}

func (b *bubble) reResolve(info page.ContentInfo) tea.Cmd {
	return func() tea.Msg {
		res, err := b.resolver.Resolve(info)
		return actionDone{resolved: res, err: err}
	}
}
