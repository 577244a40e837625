package model

import "errors"

var (
	// ErrConfiguration is returned before any computation when a ChartContext
	// or request carries conflicting settings.
	ErrConfiguration = errors.New("invalid chart configuration")

	// ErrOracleUnavailable marks a single point the ephemeris cannot supply.
	// Callers drop the point and keep going.
	ErrOracleUnavailable = errors.New("point not available from ephemeris")

	// ErrHouseAssignment means no house interval contained a position.
	ErrHouseAssignment = errors.New("house assignment failed")

	// ErrIncompatibleCharts is returned when two charts with different
	// contexts are compared or merged.
	ErrIncompatibleCharts = errors.New("incompatible chart contexts")
)
