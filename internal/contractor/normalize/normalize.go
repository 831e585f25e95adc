// Package normalize turns raw registry rows into canonical contractor
// fields. It owns all raw field-name knowledge and every cleanup rule:
// text artifacts, phone formats, date conversion, website inference and
// company-type classification.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pankas/internal/contractor/models"
	"pankas/internal/contractor/registry"
	id "pankas/pkg/domain"
)

// CompanyFacts is the normalized contribution of the companies registry.
// Empty string fields mean "registry said nothing"; merge never overwrites
// a known value with an empty one.
type CompanyFacts struct {
	Found          bool
	Name           string
	NameEnglish    string
	City           string
	Address        string
	Phone          string
	Email          string
	Website        string
	CompanyType    string
	FoundationDate string
	Status         models.RegistryStatus
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs and repairs the known encoding
// artifact where the Hebrew gershayim in בע״מ arrives as a tilde.
func CleanText(s string) string {
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	return strings.ReplaceAll(s, `בע~מ`, `בע״מ`)
}

// FormatPhone normalizes an Israeli phone number: strip non-digits, ensure
// a leading zero, then hyphenate by length. Unrecognized lengths pass
// through digits-only rather than guessing.
func FormatPhone(phone string) string {
	if phone == "" {
		return ""
	}
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if d == "" {
		return ""
	}
	if !strings.HasPrefix(d, "0") {
		d = "0" + d
	}
	switch len(d) {
	case 10: // mobile, e.g. 050-1234567
		return d[:3] + "-" + d[3:]
	case 9: // landline, e.g. 03-1234567
		return d[:2] + "-" + d[2:]
	case 8: // landline missing its area zero
		d = "0" + d
		return d[:2] + "-" + d[2:]
	default:
		return d
	}
}

// ConvertDate turns a dd/mm/yyyy registry date into yyyy-mm-dd. Anything
// unparseable yields "" — never a default date.
func ConvertDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if t, err := time.Parse("2/1/2006", raw); err == nil {
		return t.Format("2006-01-02")
	}
	// Some datasets already serve ISO or full timestamps.
	if t, err := time.Parse("2006-01-02", raw[:min(len(raw), 10)]); err == nil {
		return t.Format("2006-01-02")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format("2006-01-02")
	}
	return ""
}

// WebsiteFromEmail derives a website from the email's domain unless the
// domain belongs to a known free/personal provider.
func WebsiteFromEmail(email string) string {
	_, domain, found := strings.Cut(email, "@")
	if !found || domain == "" {
		return ""
	}
	if freeEmailProviders[strings.ToLower(domain)] {
		return ""
	}
	return "www." + domain
}

// CompanyTypeFor resolves the canonical company type: the registry's
// explicit type wins when it matches a known keyword, otherwise the
// identifier prefix decides, defaulting to a private company.
func CompanyTypeFor(registryType string, companyID id.CompanyID) string {
	for _, kw := range companyTypeKeywords {
		if strings.Contains(registryType, kw.keyword) {
			return kw.canonical
		}
	}
	if t, ok := companyTypeByPrefix[companyID.CompanyTypePrefix()]; ok {
		return t
	}
	return companyTypeDefault
}

// IsPrivateCompany reports whether the canonical type is subject to the
// annual-report staleness check.
func IsPrivateCompany(companyType string) bool {
	return privateCompanyTypes[companyType]
}

// Company normalizes the companies-registry result set. The registry
// returns at most one meaningful row per identifier; extra rows are
// historical noise and only the first is used.
func Company(rows []registry.RawRecord, companyID id.CompanyID) CompanyFacts {
	if len(rows) == 0 {
		return CompanyFacts{}
	}
	row := rows[0]

	facts := CompanyFacts{
		Found:          true,
		Name:           CleanText(str(row, fieldCompanyName)),
		NameEnglish:    CleanText(str(row, fieldCompanyNameEn)),
		City:           CleanText(str(row, fieldCity)),
		Phone:          FormatPhone(str(row, fieldPhone)),
		Email:          strings.TrimSpace(str(row, fieldEmail)),
		FoundationDate: ConvertDate(str(row, fieldFoundationDate)),
		CompanyType:    CompanyTypeFor(str(row, fieldCompanyType), companyID),
	}

	facts.Address = CleanText(strings.TrimSpace(str(row, fieldStreet) + " " + str(row, fieldHouseNumber)))

	facts.Website = strings.TrimSpace(str(row, fieldWebsite))
	if facts.Website == "" {
		facts.Website = WebsiteFromEmail(facts.Email)
	}

	facts.Status = statusFrom(row)
	return facts
}

// statusFrom extracts compliance fields, distinguishing absent keys from
// empty values: only keys the registry actually returned produce pointers.
func statusFrom(row registry.RawRecord) models.RegistryStatus {
	var status models.RegistryStatus
	if _, ok := row[fieldCompanyStatus]; ok {
		v := CleanText(str(row, fieldCompanyStatus))
		status.CompanyStatus = &v
	}
	if _, ok := row[fieldViolator]; ok {
		v := strings.TrimSpace(str(row, fieldViolator)) != ""
		status.Violator = &v
	}
	if restriction := CleanText(str(row, fieldRestrictions)); restriction != "" && restriction != restrictionsLtdMarker {
		status.Restrictions = []string{restriction}
	}
	if year, ok := intField(row, fieldLastReportYear); ok {
		status.LastReportYear = &year
	}
	return status
}

// str reads a field as a string, tolerating the datastore's habit of
// returning numbers for numeric-looking columns.
func str(row registry.RawRecord, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func intField(row registry.RawRecord, key string) (int, bool) {
	switch v := row[key].(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func floatField(row registry.RawRecord, key string) (float64, bool) {
	switch v := row[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
