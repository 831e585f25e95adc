package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pankas/internal/contractor/models"
	id "pankas/pkg/domain"
	"pankas/pkg/platform/sentinel"
)

// Postgres persists contractor records with a unique constraint on
// company_id; Upsert rides ON CONFLICT so concurrent reconciliations of
// the same identifier cannot race into duplicates.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the contractors table when absent. Deployments with
// managed migrations can skip it.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS contractors (
			id                    UUID PRIMARY KEY,
			company_id            TEXT NOT NULL UNIQUE,
			name                  TEXT NOT NULL DEFAULT '',
			name_english          TEXT NOT NULL DEFAULT '',
			city                  TEXT NOT NULL DEFAULT '',
			address               TEXT NOT NULL DEFAULT '',
			phone                 TEXT NOT NULL DEFAULT '',
			email                 TEXT NOT NULL DEFAULT '',
			website               TEXT NOT NULL DEFAULT '',
			company_type          TEXT NOT NULL DEFAULT '',
			foundation_date       TEXT NOT NULL DEFAULT '',
			sector                TEXT NOT NULL DEFAULT '',
			contractor_license_id TEXT NOT NULL DEFAULT '',
			licenses              JSONB NOT NULL DEFAULT '[]',
			company_status        TEXT,
			violator              BOOLEAN,
			restrictions          TEXT[],
			last_report_year      INT,
			indicator             TEXT NOT NULL DEFAULT 'unknown',
			active                BOOLEAN NOT NULL DEFAULT TRUE,
			status_updated_at     TIMESTAMPTZ NOT NULL DEFAULT 'epoch',
			licenses_updated_at   TIMESTAMPTZ NOT NULL DEFAULT 'epoch',
			created_at            TIMESTAMPTZ NOT NULL,
			updated_at            TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure contractors schema: %w", err)
	}
	return nil
}

const contractorColumns = `
	id, company_id, name, name_english, city, address, phone, email, website,
	company_type, foundation_date, sector, contractor_license_id, licenses,
	company_status, violator, restrictions, last_report_year, indicator,
	active, status_updated_at, licenses_updated_at, created_at, updated_at`

func (s *Postgres) FindByCompanyID(ctx context.Context, companyID id.CompanyID) (*models.ContractorRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contractorColumns+` FROM contractors WHERE company_id = $1`,
		companyID.String())
	record, err := scanContractor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contractor: %w", err)
	}
	return record, nil
}

func (s *Postgres) Upsert(ctx context.Context, record *models.ContractorRecord) (*models.ContractorRecord, error) {
	licenses, err := json.Marshal(licensesOrEmpty(record.Licenses))
	if err != nil {
		return nil, fmt.Errorf("marshal licenses: %w", err)
	}

	recordID := record.ID
	if recordID == "" {
		recordID = uuid.NewString()
	}
	now := time.Now()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO contractors (`+contractorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $23)
		ON CONFLICT (company_id) DO UPDATE SET
			name = EXCLUDED.name,
			name_english = EXCLUDED.name_english,
			city = EXCLUDED.city,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			website = EXCLUDED.website,
			company_type = EXCLUDED.company_type,
			foundation_date = EXCLUDED.foundation_date,
			sector = EXCLUDED.sector,
			contractor_license_id = EXCLUDED.contractor_license_id,
			licenses = EXCLUDED.licenses,
			company_status = EXCLUDED.company_status,
			violator = EXCLUDED.violator,
			restrictions = EXCLUDED.restrictions,
			last_report_year = EXCLUDED.last_report_year,
			indicator = EXCLUDED.indicator,
			active = EXCLUDED.active,
			status_updated_at = EXCLUDED.status_updated_at,
			licenses_updated_at = EXCLUDED.licenses_updated_at,
			updated_at = EXCLUDED.updated_at
		RETURNING `+contractorColumns,
		recordID, record.CompanyID.String(), record.Name, record.NameEnglish,
		record.City, record.Address, record.Phone, record.Email, record.Website,
		record.CompanyType, record.FoundationDate, record.Sector,
		record.ContractorLicenseID, licenses,
		record.Status.CompanyStatus, record.Status.Violator,
		pq.Array(record.Status.Restrictions), record.Status.LastReportYear,
		string(record.Indicator), record.Active,
		record.StatusUpdatedAt, record.LicensesUpdatedAt, now)

	stored, err := scanContractor(row)
	if err != nil {
		return nil, fmt.Errorf("upsert contractor: %w", err)
	}
	return stored, nil
}

func licensesOrEmpty(entries []models.LicenseEntry) []models.LicenseEntry {
	if entries == nil {
		return []models.LicenseEntry{}
	}
	return entries
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContractor(row rowScanner) (*models.ContractorRecord, error) {
	var (
		record       models.ContractorRecord
		companyID    string
		licensesJSON []byte
		indicator    string
		restrictions pq.StringArray
	)
	err := row.Scan(
		&record.ID, &companyID, &record.Name, &record.NameEnglish,
		&record.City, &record.Address, &record.Phone, &record.Email,
		&record.Website, &record.CompanyType, &record.FoundationDate,
		&record.Sector, &record.ContractorLicenseID, &licensesJSON,
		&record.Status.CompanyStatus, &record.Status.Violator,
		&restrictions, &record.Status.LastReportYear, &indicator,
		&record.Active, &record.StatusUpdatedAt, &record.LicensesUpdatedAt,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	record.CompanyID = id.CompanyID(companyID)
	record.Indicator = models.StatusIndicator(indicator)
	record.Status.Restrictions = []string(restrictions)
	if err := json.Unmarshal(licensesJSON, &record.Licenses); err != nil {
		return nil, fmt.Errorf("unmarshal licenses: %w", err)
	}
	return &record, nil
}
