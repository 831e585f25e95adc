//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"pankas/internal/contractor/models"
	id "pankas/pkg/domain"
	"pankas/pkg/platform/sentinel"
	"pankas/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
	ctx   context.Context
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(EnsureSchema(s.ctx, s.pg.DB))
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx, `TRUNCATE contractors`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) record() *models.ContractorRecord {
	status := "פעילה"
	violator := false
	year := 2025
	return &models.ContractorRecord{
		CompanyID:   id.CompanyID("515782233"),
		Name:        "בנייני הארץ בע״מ",
		City:        "תל אביב",
		CompanyType: "חברה פרטית",
		Indicator:   models.StatusGreen,
		Active:      true,
		Licenses: []models.LicenseEntry{
			{ClassificationType: "ג", ClassificationCode: "100", Description: "בניה", ScaleFigure: 12500},
		},
		Status: models.RegistryStatus{
			CompanyStatus:  &status,
			Violator:       &violator,
			Restrictions:   []string{"שעבוד"},
			LastReportYear: &year,
		},
	}
}

func (s *PostgresSuite) TestFindMissing() {
	_, err := s.store.FindByCompanyID(s.ctx, id.CompanyID("515782233"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestUpsertRoundTrip() {
	stored, err := s.store.Upsert(s.ctx, s.record())
	s.Require().NoError(err)
	s.NotEmpty(stored.ID)
	s.False(stored.CreatedAt.IsZero())

	found, err := s.store.FindByCompanyID(s.ctx, stored.CompanyID)
	s.Require().NoError(err)
	s.Equal(stored.ID, found.ID)
	s.Equal("בנייני הארץ בע״מ", found.Name)
	s.Equal(models.StatusGreen, found.Indicator)

	s.Require().NotNil(found.Status.CompanyStatus)
	s.Equal("פעילה", *found.Status.CompanyStatus)
	s.Require().NotNil(found.Status.Violator)
	s.False(*found.Status.Violator)
	s.Equal([]string{"שעבוד"}, found.Status.Restrictions)
	s.Require().NotNil(found.Status.LastReportYear)
	s.Equal(2025, *found.Status.LastReportYear)

	s.Require().Len(found.Licenses, 1)
	s.Equal("ג", found.Licenses[0].ClassificationType)
	s.Equal(12500.0, found.Licenses[0].ScaleFigure)
}

func (s *PostgresSuite) TestUpsertConflictUpdates() {
	first, err := s.store.Upsert(s.ctx, s.record())
	s.Require().NoError(err)

	updated := s.record()
	updated.Name = "שם חדש"
	updated.Indicator = models.StatusYellow
	second, err := s.store.Upsert(s.ctx, updated)
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID, "conflict must update, not insert")
	s.True(first.CreatedAt.Equal(second.CreatedAt))
	s.Equal("שם חדש", second.Name)
	s.Equal(models.StatusYellow, second.Indicator)

	var count int
	s.Require().NoError(s.pg.DB.QueryRowContext(s.ctx,
		`SELECT COUNT(*) FROM contractors`).Scan(&count))
	s.Equal(1, count)
}

func (s *PostgresSuite) TestNilStatusFields() {
	record := s.record()
	record.Status = models.RegistryStatus{}
	record.Indicator = models.StatusUnknown
	record.Licenses = nil

	stored, err := s.store.Upsert(s.ctx, record)
	s.Require().NoError(err)

	found, err := s.store.FindByCompanyID(s.ctx, stored.CompanyID)
	s.Require().NoError(err)
	s.True(found.Status.Empty())
	s.Empty(found.Licenses)
	s.Equal(models.StatusUnknown, found.Indicator)
}
