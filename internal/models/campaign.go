package models

import "time"

// CampaignTypePast tags campaigns that collect suggestions about past events.
const CampaignTypePast = "past"

// Campaign is a submission drive shown on the landing page. CompRef, when
// set, correlates submitted suggestions back to the campaign.
type Campaign struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Placement int       `json:"placement"`
	CompRef   string    `json:"comp_ref,omitempty"`
	Type      string    `json:"type,omitempty"`
}

// Active reports whether the campaign window contains the given instant.
func (c Campaign) Active(now time.Time) bool {
	return !now.Before(c.StartDate) && !now.After(c.EndDate)
}

// IsPast reports whether the campaign collects past-event suggestions.
func (c Campaign) IsPast() bool { return c.Type == CampaignTypePast }
