package app

import (
	"context"
	"sort"

	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/apperror"
	"github.com/LavonTMCQ/Catsky-Cardano-Trading-Bot/internal/logger"
)

// VenueService is a lookup table of venue adapters keyed by venue name.
// Absence of an adapter for a configured venue is a configuration-time
// concern: Register at startup, never mid-loop.
type VenueService struct {
	venues map[string]Venue
	order  []string
	log    logger.LoggerInterface
}

// NewVenueService creates an empty venue registry.
func NewVenueService(log logger.LoggerInterface) *VenueService {
	return &VenueService{
		venues: make(map[string]Venue),
		log:    log,
	}
}

// Register adds a venue adapter. Returns an error on duplicate names.
func (s *VenueService) Register(v Venue) error {
	name := v.Venue()
	if _, exists := s.venues[name]; exists {
		return apperror.New(apperror.CodeInternalError,
			apperror.WithMessage("venue already registered"),
			apperror.WithContext("venue", name))
	}
	s.venues[name] = v
	s.order = append(s.order, name)
	return nil
}

// Get returns the adapter for a venue name.
func (s *VenueService) Get(name string) (Venue, error) {
	v, ok := s.venues[name]
	if !ok {
		return nil, apperror.New(apperror.CodeNotFound,
			apperror.WithMessage("venue not registered"),
			apperror.WithContext("venue", name))
	}
	return v, nil
}

// PriceSources returns all registered adapters in registration order.
func (s *VenueService) PriceSources() []PriceSource {
	out := make([]PriceSource, 0, len(s.venues))
	for _, name := range s.order {
		out = append(out, s.venues[name])
	}
	return out
}

// Names returns the registered venue names, sorted.
func (s *VenueService) Names() []string {
	names := make([]string, 0, len(s.venues))
	for name := range s.venues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InitializeAll initializes every registered adapter. A venue that fails
// to initialize is logged and left registered; its scan calls will keep
// failing until it recovers.
func (s *VenueService) InitializeAll(ctx context.Context) {
	for _, name := range s.order {
		if err := s.venues[name].Initialize(ctx); err != nil {
			s.log.Warn(ctx, "venue initialization failed", "venue", name, "error", err)
			continue
		}
		s.log.Info(ctx, "venue initialized", "venue", name)
	}
}
