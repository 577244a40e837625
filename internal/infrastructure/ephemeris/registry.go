// Package ephemeris holds the registry of ephemeris drivers.
package ephemeris

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"astrox/internal/application/port"
)

// Options carries the driver settings from config.
type Options struct {
	FixturePath string
	URL         string
	Timeout     time.Duration
}

// factory函数类型
type Factory func(opts Options) (port.Ephemeris, error)

// registry maps driver names to their factories
var registry = make(map[string]Factory)

// Register 注册一个星历驱动
// 这是由各个驱动包的init()函数调用来自注册的
func Register(driver string, factory Factory) {
	if factory == nil {
		log.Warn().Str("driver", driver).Msg("invalid ephemeris factory")
		return
	}
	if _, exists := registry[driver]; exists {
		log.Warn().Str("driver", driver).Msg("ephemeris factory already registered, overwriting")
	}
	registry[driver] = factory
	log.Debug().Str("driver", driver).Msg("ephemeris factory registered")
}

// Get 获取已注册的驱动
func Get(driver string) (Factory, bool) {
	factory, ok := registry[driver]
	return factory, ok
}

// Drivers lists the registered driver names.
func Drivers() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
