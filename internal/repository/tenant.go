package repository

import (
	"context"

	"kominn/internal/store"
)

// TenantConfigRepository reads the tenant configuration collection used by
// the external publish bridge.
type TenantConfigRepository interface {
	// ClientID returns the configured external client identifier, or ""
	// when no configuration record exists.
	ClientID(ctx context.Context) (string, error)
}

type tenantConfigRepository struct {
	store *store.Client
}

// NewTenantConfigRepository creates a tenant config repository over the given
// store client.
func NewTenantConfigRepository(s *store.Client) TenantConfigRepository {
	return &tenantConfigRepository{store: s}
}

type tenantConfigRow struct {
	ID       int    `json:"Id"`
	ClientID string `json:"ClientId"`
}

func (r *tenantConfigRepository) ClientID(ctx context.Context) (string, error) {
	var rows []tenantConfigRow
	if err := r.store.Items(ctx, ListTenantConfig, store.Query{Top: 1}, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].ClientID, nil
}
