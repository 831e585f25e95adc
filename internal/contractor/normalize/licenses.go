package normalize

import (
	"strings"

	"pankas/internal/contractor/models"
	"pankas/internal/contractor/registry"
)

// LicenseFacts is the normalized contribution of the contractors registry:
// the deduplicated license list plus the handful of contact fields that
// registry carries on every row.
type LicenseFacts struct {
	Found               bool
	ContractorLicenseID string
	Sector              string
	Email               string
	Phone               string
	Licenses            []models.LicenseEntry
}

// Licenses aggregates the per-activity rows for one identifier.
//
// Rows must carry both a classification group and a classification code to
// produce an entry; entries are deduplicated by (group, code) with the
// first occurrence winning — the registry lists most-recent rows first.
// Unparseable embedded dates drop that entry's date only. Aggregating the
// same row set twice yields an identical result.
func Licenses(rows []registry.RawRecord) LicenseFacts {
	if len(rows) == 0 {
		return LicenseFacts{}
	}

	first := rows[0]
	facts := LicenseFacts{
		Found:               true,
		ContractorLicenseID: str(first, fieldLicenseNumber),
		Sector:              CleanText(str(first, fieldBranchDesc)),
		Email:               strings.TrimSpace(str(first, fieldContractorEmail)),
		Phone:               FormatPhone(firstNonEmpty(str(first, fieldContractorTel), str(first, fieldContractorTel2))),
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		classType := CleanText(str(row, fieldClassGroup))
		classCode := CleanText(str(row, fieldClassCode))
		if classType == "" || classCode == "" {
			continue
		}

		entry := models.LicenseEntry{
			ClassificationType: classType,
			ClassificationCode: classCode,
			Description:        CleanText(str(row, fieldBranchDesc)),
			LicenseCode:        str(row, fieldLicenseNumber),
			RegisteredAt:       ConvertDate(str(row, fieldClassDate)),
		}
		if scale, ok := floatField(row, fieldScaleFigure); ok {
			entry.ScaleFigure = scale
		}

		if seen[entry.Key()] {
			continue
		}
		seen[entry.Key()] = true
		facts.Licenses = append(facts.Licenses, entry)
	}
	return facts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
