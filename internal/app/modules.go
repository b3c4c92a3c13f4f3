package app

import (
	"github.com/nfrund/livechat/internal/module"
	"github.com/nfrund/livechat/internal/relay"
)

// NewModules returns the modules booted with the server.
func NewModules(deps Dependencies) []module.Module {
	var modules []module.Module
	if deps.RelayEnabled {
		modules = append(modules, relay.New(relayDeps(deps)))
	}
	return modules
}
