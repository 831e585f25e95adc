package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pankas/internal/contractor/models"
)

func fixedEngine() *Engine {
	return NewEngineAt(func() time.Time {
		return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	})
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }

func TestEvaluate(t *testing.T) {
	const (
		private = "חברה פרטית"
		public  = "חברה ציבורית"
	)

	tests := []struct {
		name        string
		status      models.RegistryStatus
		companyType string
		want        models.StatusIndicator
	}{
		{
			name:        "no status fields at all",
			status:      models.RegistryStatus{},
			companyType: private,
			want:        models.StatusUnknown,
		},
		{
			name: "violator is red regardless of status",
			status: models.RegistryStatus{
				CompanyStatus: strPtr("פעילה"),
				Violator:      boolPtr(true),
			},
			companyType: private,
			want:        models.StatusRed,
		},
		{
			name: "inactive status is yellow",
			status: models.RegistryStatus{
				CompanyStatus: strPtr("בפירוק"),
				Violator:      boolPtr(false),
			},
			companyType: private,
			want:        models.StatusYellow,
		},
		{
			name: "active with recent report is green",
			status: models.RegistryStatus{
				CompanyStatus:  strPtr("פעילה"),
				Violator:       boolPtr(false),
				LastReportYear: intPtr(2025),
			},
			companyType: private,
			want:        models.StatusGreen,
		},
		{
			name: "private company with stale report is yellow",
			status: models.RegistryStatus{
				CompanyStatus:  strPtr("פעילה"),
				Violator:       boolPtr(false),
				LastReportYear: intPtr(2022),
			},
			companyType: private,
			want:        models.StatusYellow,
		},
		{
			name: "report exactly at the staleness bound is still green",
			status: models.RegistryStatus{
				CompanyStatus:  strPtr("פעילה"),
				LastReportYear: intPtr(2024),
			},
			companyType: private,
			want:        models.StatusGreen,
		},
		{
			name: "stale report does not affect a public company",
			status: models.RegistryStatus{
				CompanyStatus:  strPtr("פעילה"),
				LastReportYear: intPtr(2020),
			},
			companyType: public,
			want:        models.StatusGreen,
		},
		{
			name: "active with no report year is green",
			status: models.RegistryStatus{
				CompanyStatus: strPtr("פעילה"),
			},
			companyType: private,
			want:        models.StatusGreen,
		},
		{
			name: "restrictions alone do not force red",
			status: models.RegistryStatus{
				CompanyStatus: strPtr("פעילה"),
				Restrictions:  []string{"שעבוד"},
			},
			companyType: private,
			want:        models.StatusGreen,
		},
	}

	engine := fixedEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Evaluate(tt.status, tt.companyType))
		})
	}
}
