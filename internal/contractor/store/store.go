// Package store persists canonical contractor records. Two backends:
// an in-memory map for tests and development, and PostgreSQL for real
// deployments. Both guarantee at most one record per company identifier.
package store

import (
	"context"

	"pankas/internal/contractor/models"
	id "pankas/pkg/domain"
)

// ContractorStore is the persisted-store contract consumed by the
// reconciliation service.
//
// Upsert must be atomic per identifier: two concurrent reconciliations of
// the same company may never create two records. Implementations return
// sentinel.ErrNotFound from FindByCompanyID when no record exists.
type ContractorStore interface {
	FindByCompanyID(ctx context.Context, companyID id.CompanyID) (*models.ContractorRecord, error)
	Upsert(ctx context.Context, record *models.ContractorRecord) (*models.ContractorRecord, error)
}
