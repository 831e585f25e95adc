package models

import (
	"time"

	id "pankas/pkg/domain"
)

// StatusIndicator is the derived three-state compliance signal.
type StatusIndicator string

const (
	StatusGreen   StatusIndicator = "green"
	StatusYellow  StatusIndicator = "yellow"
	StatusRed     StatusIndicator = "red"
	StatusUnknown StatusIndicator = "unknown"
)

// Outcome tags how a reconciliation resolved.
type Outcome string

const (
	// OutcomeCreated: no persisted record existed; one was created from
	// registry data.
	OutcomeCreated Outcome = "created"
	// OutcomeLoadedExisting: a fresh persisted record was returned without
	// touching the registries.
	OutcomeLoadedExisting Outcome = "loadedExisting"
	// OutcomeRefreshed: an existing record was merged with fresh registry
	// data and upserted.
	OutcomeRefreshed Outcome = "refreshed"
)

// LicenseEntry is one deduplicated classification/activity row from the
// contractors registry.
//
// Uniqueness key: (ClassificationType, ClassificationCode). The aggregator
// guarantees no two entries in a record share it.
type LicenseEntry struct {
	ClassificationType string `json:"classification_type"`
	ClassificationCode string `json:"classification_code"`
	Description        string `json:"description"`
	LicenseCode        string `json:"license_code"`
	// RegisteredAt is the row's effective date in yyyy-mm-dd, empty when
	// the source date failed to parse.
	RegisteredAt string  `json:"registered_at,omitempty"`
	ScaleFigure  float64 `json:"scale_figure,omitempty"`
}

// Key returns the deduplication key for the entry.
func (e LicenseEntry) Key() string {
	return e.ClassificationType + "/" + e.ClassificationCode
}

// RegistryStatus captures the companies-registry compliance fields backing
// the derived indicator. Pointers distinguish "registry said nothing" from
// zero values; the indicator must read Unknown in the former case.
type RegistryStatus struct {
	CompanyStatus  *string  `json:"company_status,omitempty"`
	Violator       *bool    `json:"violator,omitempty"`
	Restrictions   []string `json:"restrictions,omitempty"`
	LastReportYear *int     `json:"last_report_year,omitempty"`
}

// Empty reports whether the registry supplied no status fields at all.
func (s RegistryStatus) Empty() bool {
	return s.CompanyStatus == nil && s.Violator == nil && s.LastReportYear == nil && len(s.Restrictions) == 0
}

// ContractorRecord is the canonical persisted representation of a
// contractor, derived from zero or more registry sources.
//
// Invariants:
//   - At most one record per CompanyID (stores upsert by identifier)
//   - Licenses contains no duplicate (type, code) keys
//   - Indicator is StatusUnknown whenever Status.Empty() holds
//   - StatusUpdatedAt / LicensesUpdatedAt move independently: refreshing
//     one category never touches the other's timestamp
//
// Mutated only by the reconciliation service's merge step; never deleted
// by this engine. Archived records (Active=false) are surfaced as-is —
// reactivation belongs to the collaborator that archived them.
type ContractorRecord struct {
	ID        string       `json:"id"`
	CompanyID id.CompanyID `json:"company_id"`

	Name        string `json:"name"`
	NameEnglish string `json:"name_english,omitempty"`
	City        string `json:"city,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Website     string `json:"website,omitempty"`

	CompanyType    string `json:"company_type,omitempty"`
	FoundationDate string `json:"foundation_date,omitempty"`
	Sector         string `json:"sector,omitempty"`
	// ContractorLicenseID is the contractor registry's own number
	// (distinct from the company identifier).
	ContractorLicenseID string `json:"contractor_license_id,omitempty"`

	Licenses  []LicenseEntry  `json:"licenses"`
	Status    RegistryStatus  `json:"status"`
	Indicator StatusIndicator `json:"indicator"`

	Active bool `json:"active"`

	StatusUpdatedAt   time.Time `json:"status_updated_at"`
	LicensesUpdatedAt time.Time `json:"licenses_updated_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Clone returns a deep copy so stores can hand out records without
// aliasing their internal state.
func (r *ContractorRecord) Clone() *ContractorRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.Licenses != nil {
		out.Licenses = make([]LicenseEntry, len(r.Licenses))
		copy(out.Licenses, r.Licenses)
	}
	if r.Status.CompanyStatus != nil {
		v := *r.Status.CompanyStatus
		out.Status.CompanyStatus = &v
	}
	if r.Status.Violator != nil {
		v := *r.Status.Violator
		out.Status.Violator = &v
	}
	if r.Status.LastReportYear != nil {
		v := *r.Status.LastReportYear
		out.Status.LastReportYear = &v
	}
	if r.Status.Restrictions != nil {
		out.Status.Restrictions = append([]string(nil), r.Status.Restrictions...)
	}
	return &out
}
