package service

import (
	"time"

	"pankas/internal/contractor/models"
	"pankas/internal/contractor/normalize"
	id "pankas/pkg/domain"
)

// merge folds freshly normalized registry facts into the existing
// persisted record (or a new skeleton when none exists).
//
// Scalar fields prefer fresh non-empty values and fall back to persisted
// ones — a known field is never erased by an absent one. The license list
// and the status block are replaced wholesale, but only for the category
// whose registry actually answered; the other category keeps its data and
// its timestamp untouched.
func merge(existing *models.ContractorRecord, companyID id.CompanyID, fetched fetchResult, now time.Time) *models.ContractorRecord {
	record := existing.Clone()
	if record == nil {
		record = &models.ContractorRecord{
			CompanyID:   companyID,
			CompanyType: normalize.CompanyTypeFor("", companyID),
			Indicator:   models.StatusUnknown,
			Active:      true,
		}
	}

	if fetched.statusRefreshed {
		company := fetched.company
		record.Name = prefer(company.Name, record.Name)
		record.NameEnglish = prefer(company.NameEnglish, record.NameEnglish)
		record.City = prefer(company.City, record.City)
		record.Address = prefer(company.Address, record.Address)
		record.Phone = prefer(company.Phone, record.Phone)
		record.Email = prefer(company.Email, record.Email)
		record.Website = prefer(company.Website, record.Website)
		record.CompanyType = prefer(company.CompanyType, record.CompanyType)
		record.FoundationDate = prefer(company.FoundationDate, record.FoundationDate)

		record.Status = company.Status
		record.StatusUpdatedAt = now
	}

	if fetched.licensesRefreshed {
		licenses := fetched.licenses
		record.ContractorLicenseID = prefer(licenses.ContractorLicenseID, record.ContractorLicenseID)
		record.Sector = prefer(licenses.Sector, record.Sector)
		// The contractors registry's contact details are maintained more
		// actively than the companies registry's; they win when present.
		record.Email = prefer(licenses.Email, record.Email)
		record.Phone = prefer(licenses.Phone, record.Phone)
		if record.Website == "" {
			record.Website = normalize.WebsiteFromEmail(licenses.Email)
		}

		record.Licenses = licenses.Licenses
		record.LicensesUpdatedAt = now
	}

	return record
}

// prefer returns the first non-empty value.
func prefer(fresh, fallback string) string {
	if fresh != "" {
		return fresh
	}
	return fallback
}
