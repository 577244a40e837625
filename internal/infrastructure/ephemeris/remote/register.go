package remote

import (
	"astrox/internal/application/port"
	"astrox/internal/infrastructure/config"
	"astrox/internal/infrastructure/ephemeris"
)

// init() registers the websocket driver
func init() {
	ephemeris.Register(config.DriverRemote, func(opts ephemeris.Options) (port.Ephemeris, error) {
		return New(opts.URL, opts.Timeout), nil
	})
}
