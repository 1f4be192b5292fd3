// Package widget implements the terminal widget that presents identification
// results and catalog actions while a page is being watched.
package widget

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kinotag-cli/kinotag/detector"
	"github.com/kinotag-cli/kinotag/lookup"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/resolver"
)

// Options wires the widget to a running detection session.
type Options struct {
	Resolver *resolver.Resolver
	Service  lookup.Service
	Session  *detector.Session
	Source   detector.Source
}

// Run attaches the widget to the session and blocks until the user quits or
// the context ends. Session callbacks are installed here; the widget is the
// sole consumer of resolution updates.
func Run(ctx context.Context, opts *Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tea.Msg, 8)
	opts.Session.OnUpdate = func(res *resolver.Resolved) {
		events <- resolvedMsg{resolved: res}
	}
	opts.Session.OnMiss = func(info page.ContentInfo, err error) {
		events <- missMsg{info: info, err: err}
	}

	go func() {
		defer opts.Source.Close()
		if err := opts.Session.Run(ctx, opts.Source); err != nil && !errors.Is(err, context.Canceled) {
			events <- errorMsg{err: err}
		}
	}()

	program := tea.NewProgram(newBubble(opts, events))
	_, err := program.Run()
	return err
}
