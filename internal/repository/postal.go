package repository

import (
	"context"
	"fmt"
	"strings"

	"kominn/internal/store"
)

// PostalRepository resolves zip codes to city and county code.
type PostalRepository interface {
	// Lookup returns the city and county code for a zip code. A missing
	// zip code yields empty strings with a nil error.
	Lookup(ctx context.Context, zipcode string) (city, countyCode string, err error)
}

type postalRepository struct {
	store *store.Client
}

// NewPostalRepository creates a postal lookup repository over the given store
// client.
func NewPostalRepository(s *store.Client) PostalRepository {
	return &postalRepository{store: s}
}

type postalRow struct {
	CountyCode string `json:"CountyCode"`
	City       string `json:"City"`
}

func (r *postalRepository) Lookup(ctx context.Context, zipcode string) (string, string, error) {
	escaped := strings.ReplaceAll(zipcode, "'", "''")
	var rows []postalRow
	err := r.store.Items(ctx, ListPostalCodes, store.Query{
		Filter: fmt.Sprintf("Zipcode eq '%s'", escaped),
		Select: []string{"CountyCode", "City"},
		Top:    1,
	}, &rows)
	if err != nil {
		return "", "", err
	}
	if len(rows) == 0 {
		return "", "", nil
	}
	return rows[0].City, rows[0].CountyCode, nil
}
