package repository

import (
	"context"
	"time"

	"kominn/internal/models"
	"kominn/internal/store"
)

// CampaignRepository reads submission campaigns.
type CampaignRepository interface {
	List(ctx context.Context) ([]models.Campaign, error)
	ListActive(ctx context.Context, now time.Time) ([]models.Campaign, error)
}

type campaignRepository struct {
	store *store.Client
}

// NewCampaignRepository creates a campaign repository over the given store client.
func NewCampaignRepository(s *store.Client) CampaignRepository {
	return &campaignRepository{store: s}
}

type campaignRow struct {
	ID        int       `json:"Id"`
	Title     string    `json:"Title"`
	StartDate time.Time `json:"StartDate"`
	EndDate   time.Time `json:"EndDate"`
	Placement int       `json:"Placement"`
	CompRef   string    `json:"CompRef"`
	Type      string    `json:"Type"`
}

// List returns all campaigns ordered by placement.
func (r *campaignRepository) List(ctx context.Context) ([]models.Campaign, error) {
	var rows []campaignRow
	err := r.store.Items(ctx, ListCampaigns, store.Query{
		OrderBy: "Placement asc",
	}, &rows)
	if err != nil {
		return nil, err
	}

	campaigns := make([]models.Campaign, 0, len(rows))
	for _, row := range rows {
		campaigns = append(campaigns, models.Campaign{
			ID:        row.ID,
			Text:      row.Title,
			StartDate: row.StartDate,
			EndDate:   row.EndDate,
			Placement: row.Placement,
			CompRef:   row.CompRef,
			Type:      row.Type,
		})
	}
	return campaigns, nil
}

// ListActive returns the campaigns whose window contains now, ordered by
// placement.
func (r *campaignRepository) ListActive(ctx context.Context, now time.Time) ([]models.Campaign, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Campaign, 0, len(all))
	for _, c := range all {
		if c.Active(now) {
			active = append(active, c)
		}
	}
	return active, nil
}
