package service

import (
	"context"

	"kominn/internal/models"
	"kominn/internal/profile"
	"kominn/internal/repository"
)

// ProfileService resolves the full profile snapshot for an actor: directory
// properties, the manager identity, and the postal city/county enrichment.
type ProfileService struct {
	dir    Directory
	postal repository.PostalRepository
}

// NewProfileService creates a profile service.
func NewProfileService(dir Directory, postal repository.PostalRepository) *ProfileService {
	return &ProfileService{dir: dir, postal: postal}
}

// Profile reads the actor's directory profile, then chains the manager
// resolution and the postal lookup. A manager login the directory cannot
// resolve is skipped silently; a zip code with no postal match leaves city
// and county untouched.
func (s *ProfileService) Profile(ctx context.Context, actor Actor) (*models.Person, error) {
	p, err := s.dir.GetUserProfile(ctx, actor.Login)
	if err != nil {
		return nil, err
	}
	p.ID = actor.ID

	if p.ManagerLoginName != "" {
		id, name, err := s.dir.EnsureUser(ctx, p.ManagerLoginName)
		if err != nil {
			return nil, err
		}
		if id != profile.UnresolvedID {
			p.Manager = &models.Person{ID: id, Name: name}
		}
	}

	if p.Zipcode != "" {
		city, county, err := s.postal.Lookup(ctx, p.Zipcode)
		if err != nil {
			return nil, err
		}
		if city != "" {
			p.City = city
		}
		if county != "" {
			p.CountyCode = county
		}
	}

	return p, nil
}
