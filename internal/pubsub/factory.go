package pubsub

import (
	"fmt"

	"github.com/nfrund/livechat/internal/config"
)

// New builds the bus selected by PUBSUB_DRIVER.
func New(cfg config.Provider) (Bus, error) {
	switch cfg.GetPubSubDriver() {
	case config.DriverMemory, "":
		return NewWatermillBridge(), nil
	case config.DriverNats:
		return NewNatsBridge(cfg.GetNatsURL())
	default:
		return nil, fmt.Errorf("unknown pubsub driver %q", cfg.GetPubSubDriver())
	}
}
