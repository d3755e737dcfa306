// Package main is the entry point for reel.
package main

import (
	"github.com/reel-cli/reel/cmd"
	"github.com/reel-cli/reel/config"
	"github.com/reel-cli/reel/internal/cache"
	"github.com/reel-cli/reel/log"
	"github.com/reel-cli/reel/util"
	"github.com/reel-cli/reel/where"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go cache.CollectGarbage()
	go func() {
		_ = util.Delete(where.Temp())
	}()

	cmd.Execute()
}
