// Package status derives the three-state compliance indicator from
// companies-registry status fields.
package status

import (
	"time"

	"pankas/internal/contractor/models"
	"pankas/internal/contractor/normalize"
)

// activeStatus is the registry's literal value for a company in good
// standing.
const activeStatus = "פעילה"

// reportStaleAfterYears is how far behind the last annual report may lag
// before an otherwise-healthy private company turns yellow.
const reportStaleAfterYears = 2

// Engine evaluates the indicator decision table. The clock is injected so
// the report-year check is testable.
type Engine struct {
	now func() time.Time
}

// NewEngine builds an engine on the real clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineAt builds an engine on a fixed clock, for tests.
func NewEngineAt(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Evaluate applies the decision table in order:
//
//  1. no status fields at all → Unknown (never defaulted to green or red)
//  2. violator flag set → Red
//  3. status differs from the active value → Yellow
//  4. active private company whose last annual report is more than two
//     years old → Yellow
//  5. otherwise → Green
func (e *Engine) Evaluate(s models.RegistryStatus, companyType string) models.StatusIndicator {
	if s.Empty() {
		return models.StatusUnknown
	}
	if s.Violator != nil && *s.Violator {
		return models.StatusRed
	}
	if s.CompanyStatus != nil && *s.CompanyStatus != activeStatus {
		return models.StatusYellow
	}
	if normalize.IsPrivateCompany(companyType) && s.LastReportYear != nil {
		if e.now().Year()-*s.LastReportYear > reportStaleAfterYears {
			return models.StatusYellow
		}
	}
	return models.StatusGreen
}
