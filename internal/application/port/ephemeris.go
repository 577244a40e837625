package port

import (
	"context"
	"time"

	"astrox/internal/domain/model"
)

// Ephemeris opens oracle sessions. The oracle keeps per-context state
// (sidereal mode, observer), so every computation opens its own session
// for one ChartContext and closes it when done.
type Ephemeris interface {
	Open(ctx context.Context, cc model.ChartContext) (EphemerisSession, error)
}

// EphemerisSession is bound to a single ChartContext and is not safe for
// concurrent use.
type EphemerisSession interface {
	// Position returns longitude, speed and declination of a base point.
	// Points outside the ephemeris coverage wrap model.ErrOracleUnavailable.
	Position(ctx context.Context, id model.PointID, at time.Time) (model.Placement, error)
	// Houses returns the 12 cusps and the angles computed with them.
	Houses(ctx context.Context, at time.Time, loc model.Location) (model.HouseFrame, error)
	Close() error
}
