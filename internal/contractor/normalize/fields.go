package normalize

// Field-name mapping for the two upstream datasets. The companies registry
// publishes Hebrew column names; the contractors registry publishes
// transliterated uppercase ones. No package outside normalize should ever
// see these.
const (
	// Companies registry (רשם החברות)
	fieldCompanyName    = "שם חברה"
	fieldCompanyNameEn  = "שם באנגלית"
	fieldCity           = "שם עיר"
	fieldStreet         = "שם רחוב"
	fieldHouseNumber    = "מספר בית"
	fieldPhone          = "מספר טלפון"
	fieldEmail          = "אימייל"
	fieldWebsite        = "אתר אינטרנט"
	fieldFoundationDate = "תאריך התאגדות"
	fieldCompanyType    = "סוג תאגיד"
	fieldCompanyStatus  = "סטטוס חברה"
	fieldViolator       = "מפרה"
	fieldRestrictions   = "מגבלות"
	fieldLastReportYear = "דוח שנתי אחרון"

	// Contractors registry (פנקס הקבלנים)
	fieldLicenseNumber   = "MISPAR_KABLAN"
	fieldBranchDesc      = "TEUR_ANAF"
	fieldClassGroup      = "KVUTZA"
	fieldClassCode       = "SIVUG"
	fieldClassDate       = "TARICH_SUG"
	fieldScaleFigure     = "HEKEF"
	fieldContractorEmail = "EMAIL"
	fieldContractorTel   = "MISPAR_TEL"
	fieldContractorTel2  = "TELEFON"
)

// restrictionsLtdMarker is the registry's standard "limited liability"
// annotation on every Ltd company; it is a company form, not a restriction.
const restrictionsLtdMarker = "מוגבלת"

// companyTypeByPrefix classifies a company by the leading digits of its
// identifier when the registry supplies no explicit type.
var companyTypeByPrefix = map[string]string{
	"50": "חברה ממשלתית",
	"51": "חברה פרטית",
	"52": "חברה ציבורית",
	"53": "חברה זרה",
	"54": "אגודה שיתופית",
	"55": "עמותה",
	"6":  "עוסק מורשה",
	"7":  "עוסק פטור",
	"8":  "שותפות",
}

// companyTypeDefault covers identifiers outside the table.
const companyTypeDefault = "חברה פרטית"

// companyTypeKeywords maps substrings of the registry's explicit type
// field to canonical types; checked in order.
var companyTypeKeywords = []struct{ keyword, canonical string }{
	{"ציבורית", "חברה ציבורית"},
	{"פרטית", "חברה פרטית"},
	{"ממשלתית", "חברה ממשלתית"},
	{"זרה", "חברה זרה"},
	{"אגודה", "אגודה שיתופית"},
	{"עמותה", "עמותה"},
}

// companyTypePrivate marks the categories subject to the annual-report
// staleness check.
var privateCompanyTypes = map[string]bool{
	"חברה פרטית": true,
}

// freeEmailProviders are domains that never imply a company website.
var freeEmailProviders = map[string]bool{
	"gmail.com":    true,
	"yahoo.com":    true,
	"outlook.com":  true,
	"hotmail.com":  true,
	"walla.co.il":  true,
	"nana10.co.il": true,
}
