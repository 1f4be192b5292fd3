// Package main is the entry point for the kinotag application.
package main

import (
	"github.com/kinotag-cli/kinotag/cmd"
	"github.com/kinotag-cli/kinotag/config"
	"github.com/kinotag-cli/kinotag/internal/cache"
	"github.com/kinotag-cli/kinotag/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Initialize asynchronous background cache maintenance.
	go cache.CollectGarbage()

	cmd.Execute()
}
