package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pankas/internal/contractor/registry"
)

func licenseRows() []registry.RawRecord {
	return []registry.RawRecord{
		{
			"MISPAR_KABLAN": float64(34567),
			"KVUTZA":        "ג",
			"SIVUG":         "100",
			"TEUR_ANAF":     "בניה",
			"TARICH_SUG":    "15/06/2021",
			"HEKEF":         float64(12500),
			"EMAIL":         "office@builder.co.il",
			"MISPAR_TEL":    "0501234567",
		},
		{
			// Duplicate key, older row; must lose to the first.
			"MISPAR_KABLAN": float64(34567),
			"KVUTZA":        "ג",
			"SIVUG":         "100",
			"TEUR_ANAF":     "בניה",
			"TARICH_SUG":    "01/01/2015",
			"HEKEF":         float64(4000),
		},
		{
			"MISPAR_KABLAN": float64(34567),
			"KVUTZA":        "ב",
			"SIVUG":         "200",
			"TEUR_ANAF":     "כבישים",
			"TARICH_SUG":    "not a date",
		},
		{
			// Missing classification code: contributes no entry.
			"MISPAR_KABLAN": float64(34567),
			"KVUTZA":        "א",
			"TEUR_ANAF":     "גשרים",
		},
	}
}

func TestLicenses(t *testing.T) {
	facts := Licenses(licenseRows())

	require.True(t, facts.Found)
	assert.Equal(t, "34567", facts.ContractorLicenseID)
	assert.Equal(t, "בניה", facts.Sector)
	assert.Equal(t, "office@builder.co.il", facts.Email)
	assert.Equal(t, "050-1234567", facts.Phone)

	require.Len(t, facts.Licenses, 2)

	first := facts.Licenses[0]
	assert.Equal(t, "ג", first.ClassificationType)
	assert.Equal(t, "100", first.ClassificationCode)
	assert.Equal(t, "2021-06-15", first.RegisteredAt)
	assert.Equal(t, 12500.0, first.ScaleFigure)

	second := facts.Licenses[1]
	assert.Equal(t, "ב", second.ClassificationType)
	assert.Equal(t, "200", second.ClassificationCode)
	assert.Empty(t, second.RegisteredAt)
}

func TestLicensesIdempotent(t *testing.T) {
	rows := licenseRows()
	assert.Equal(t, Licenses(rows), Licenses(rows))
}

func TestLicensesPhoneFallback(t *testing.T) {
	facts := Licenses([]registry.RawRecord{{
		"KVUTZA":  "ג",
		"SIVUG":   "100",
		"TELEFON": "031234567",
	}})
	assert.Equal(t, "03-1234567", facts.Phone)
}

func TestLicensesNoRows(t *testing.T) {
	facts := Licenses(nil)
	assert.False(t, facts.Found)
	assert.Empty(t, facts.Licenses)
}
