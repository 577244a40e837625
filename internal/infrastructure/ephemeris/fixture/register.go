package fixture

import (
	"astrox/internal/application/port"
	"astrox/internal/infrastructure/config"
	"astrox/internal/infrastructure/ephemeris"
)

// init() registers the fixture driver
func init() {
	ephemeris.Register(config.DriverFixture, func(opts ephemeris.Options) (port.Ephemeris, error) {
		return Load(opts.FixturePath)
	})
}
