package service

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"astrox/internal/domain/model"
	dsvc "astrox/internal/domain/service"
)

type CompositeService struct {
	aspects *AspectService
}

func NewCompositeService(aspects *AspectService) *CompositeService {
	return &CompositeService{aspects: aspects}
}

// Midpoint builds the midpoint composite of two charts and its aspects.
func (s *CompositeService) Midpoint(a, b *model.Chart) (*model.Chart, model.AspectSet, error) {
	c, err := dsvc.MidpointComposite(a, b)
	if err != nil {
		return nil, model.AspectSet{}, err
	}
	c.ID = uuid.NewString()

	dropped := len(a.Points) - len(c.Points)
	if dropped > 0 {
		log.Debug().
			Str("first", a.Name).
			Str("second", b.Name).
			Int("dropped", dropped).
			Msg("composite keeps shared points only")
	}
	return c, s.aspects.Natal(c), nil
}
