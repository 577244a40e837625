package port

import "astrox/internal/domain/model"

type Sink interface {
	// Chart block: points with houses and the cusp list
	WriteChart(c *model.Chart) error
	// Aspect table under a title
	WriteAspects(title string, aspects []model.AspectResult) error
	// House overlay table under a title
	WriteOverlay(title string, entries []model.HouseOverlayEntry) error
	// Normal newline (for logs)
	NewLine() error
}
