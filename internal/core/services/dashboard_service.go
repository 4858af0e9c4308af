package services

import (
	"context"
	"time"

	"relic-ledger/internal/core/domain"

	"gorm.io/gorm"
)

// DashboardService aggregates admin statistics straight off the database
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// DashboardData represents the admin dashboard payload
type DashboardData struct {
	// Registry
	TotalArtifacts int64 `json:"total_artifacts"`

	// Ledger
	TotalBorrows  int64 `json:"total_borrows"`
	OpenBorrows   int64 `json:"open_borrows"`
	OverdueLoans  int64 `json:"overdue_loans"`
	ClosedBorrows int64 `json:"closed_borrows"`

	// Verification
	TotalReturns      int64 `json:"total_returns"`
	PendingReview     int64 `json:"pending_review"`
	AuthenticReturns  int64 `json:"authentic_returns"`
	SuspiciousReturns int64 `json:"suspicious_returns"`
	FakeReturns       int64 `json:"fake_returns"`

	// Users
	TotalUsers int64 `json:"total_users"`

	// This month
	BorrowsThisMonth int64 `json:"borrows_this_month"`
	ReturnsThisMonth int64 `json:"returns_this_month"`

	// Recent activity
	RecentReturns []ReturnSummary `json:"recent_returns"`
}

// ReturnSummary is one row of recent verification activity
type ReturnSummary struct {
	ID              uint      `json:"id"`
	ArtifactNo      string    `json:"artifact_no"`
	ArtifactName    string    `json:"artifact_name"`
	AIConclusion    string    `json:"ai_conclusion"`
	FinalConclusion *string   `json:"final_conclusion"`
	ReturnDate      time.Time `json:"return_date"`
}

// GetDashboard returns admin dashboard data
func (s *DashboardService) GetDashboard(ctx context.Context) (*DashboardData, error) {
	data := &DashboardData{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	db := s.db.WithContext(ctx)

	db.Table("artifacts").Where("deleted_at IS NULL").Count(&data.TotalArtifacts)

	db.Table("borrow_records").Where("deleted_at IS NULL").Count(&data.TotalBorrows)
	db.Table("borrow_records").
		Where("status = ? AND deleted_at IS NULL", string(domain.BorrowStatusBorrowed)).
		Count(&data.OpenBorrows)
	db.Table("borrow_records").
		Where("status = ? AND deleted_at IS NULL", string(domain.BorrowStatusReturned)).
		Count(&data.ClosedBorrows)
	db.Table("borrow_records").
		Where("status = ? AND expected_return_date IS NOT NULL AND expected_return_date < ? AND deleted_at IS NULL",
			string(domain.BorrowStatusBorrowed), now).
		Count(&data.OverdueLoans)

	db.Table("return_records").Where("deleted_at IS NULL").Count(&data.TotalReturns)
	db.Table("return_records").
		Where("final_conclusion IS NULL AND deleted_at IS NULL").
		Count(&data.PendingReview)
	db.Table("return_records").
		Where("final_conclusion = ? AND deleted_at IS NULL", string(domain.ConclusionAuthentic)).
		Count(&data.AuthenticReturns)
	db.Table("return_records").
		Where("final_conclusion = ? AND deleted_at IS NULL", string(domain.ConclusionSuspicious)).
		Count(&data.SuspiciousReturns)
	db.Table("return_records").
		Where("final_conclusion = ? AND deleted_at IS NULL", string(domain.ConclusionFake)).
		Count(&data.FakeReturns)

	db.Table("users").Where("deleted_at IS NULL").Count(&data.TotalUsers)

	db.Table("borrow_records").
		Where("created_at >= ? AND deleted_at IS NULL", monthStart).
		Count(&data.BorrowsThisMonth)
	db.Table("return_records").
		Where("created_at >= ? AND deleted_at IS NULL", monthStart).
		Count(&data.ReturnsThisMonth)

	rows, err := db.Table("return_records").
		Select(`return_records.id, artifacts.artifact_no, artifacts.name AS artifact_name,
			return_records.ai_conclusion, return_records.final_conclusion, return_records.return_date`).
		Joins("JOIN borrow_records ON borrow_records.id = return_records.borrow_record_id").
		Joins("JOIN artifacts ON artifacts.id = borrow_records.artifact_id").
		Where("return_records.deleted_at IS NULL").
		Order("return_records.return_date DESC").
		Limit(10).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var summary ReturnSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.ArtifactNo,
			&summary.ArtifactName,
			&summary.AIConclusion,
			&summary.FinalConclusion,
			&summary.ReturnDate,
		); err != nil {
			return nil, err
		}
		data.RecentReturns = append(data.RecentReturns, summary)
	}

	return data, nil
}
