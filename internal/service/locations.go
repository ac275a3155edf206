package service

import (
	"context"
	"strings"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/validation"
)

// LocationService manages venues.
type LocationService struct {
	locations LocationStore
}

// NewLocationService constructs a LocationService.
func NewLocationService(locations LocationStore) *LocationService {
	return &LocationService{locations: locations}
}

// Create validates and stores a new venue.
func (s *LocationService) Create(ctx context.Context, in model.LocationInput) (*model.Location, error) {
	in = normalizeLocation(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	loc, err := s.locations.Create(ctx, newID(), in)
	return loc, operationFailed(err)
}

// Update replaces a venue's details.
func (s *LocationService) Update(ctx context.Context, id string, in model.LocationInput) (*model.Location, error) {
	in = normalizeLocation(in)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	loc, err := s.locations.Update(ctx, id, in)
	return loc, operationFailed(err)
}

// List returns every venue.
func (s *LocationService) List(ctx context.Context) ([]model.Location, error) {
	locs, err := s.locations.List(ctx)
	return locs, operationFailed(err)
}

func normalizeLocation(in model.LocationInput) model.LocationInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	features := make([]string, 0, len(in.Features))
	for _, f := range in.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	in.Features = features
	return in
}
