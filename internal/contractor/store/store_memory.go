package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"pankas/internal/contractor/models"
	id "pankas/pkg/domain"
	"pankas/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store. The single lock makes upsert
// atomic per identifier, matching the postgres ON CONFLICT behavior.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.CompanyID]*models.ContractorRecord
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.CompanyID]*models.ContractorRecord)}
}

func (s *InMemory) FindByCompanyID(_ context.Context, companyID id.CompanyID) (*models.ContractorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[companyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return record.Clone(), nil
}

func (s *InMemory) Upsert(_ context.Context, record *models.ContractorRecord) (*models.ContractorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := record.Clone()
	if existing, ok := s.records[record.CompanyID]; ok {
		// Update in place: identity and creation time survive the merge.
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.records[record.CompanyID] = stored
	return stored.Clone(), nil
}

// Len reports the number of stored records; used by tests asserting the
// no-duplicate invariant.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
