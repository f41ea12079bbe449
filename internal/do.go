package internal

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/willie68/go_charttiles/internal/config"
	"github.com/willie68/go_charttiles/internal/cycle"
	"github.com/willie68/go_charttiles/internal/logging"
	"github.com/willie68/go_charttiles/internal/provider"
	"github.com/willie68/go_charttiles/internal/tilecache"
	"github.com/willie68/go_charttiles/internal/tiles"
	"github.com/willie68/go_charttiles/internal/tileservice"
	"github.com/willie68/go_charttiles/internal/utils/measurement"
)

type providerCloser interface {
	HasProvider(chartType string) bool
	Close()
}

// Init wires all services, the config has to be loaded before
func Init(inj do.Injector) {
	config.Init(inj)
	logging.Init(inj)
	measurement.Init(inj)
	cycle.Init(inj)
	tiles.Init(inj)
	tiles.InitNamer(inj)
	tilecache.Init(inj)
	provider.Init(inj)
	tileservice.Init(inj)
}

// Stop closes the providers and the cache and flushes the logging
func Stop(inj do.Injector) {
	if pf, err := do.InvokeAs[providerCloser](inj); err == nil {
		pf.Close()
	}
	tc := do.MustInvoke[*tilecache.Cache](inj)
	if err := tc.Close(); err != nil {
		logging.New("internal").Error(fmt.Sprintf("error on close tilecache: %v", err))
	}
	logging.Close()
}
