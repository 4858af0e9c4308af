package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"relic-ledger/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'staff'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// DomainRole returns the typed role
func (u *User) DomainRole() domain.Role {
	return domain.Role(u.Role)
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Artifact Registry
// ============================================================

// Artifact represents artifacts table
type Artifact struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ArtifactNo  string         `gorm:"uniqueIndex;size:50;not null" json:"artifact_no"`
	Name        string         `gorm:"size:200;not null;index" json:"name"`
	Author      string         `gorm:"size:100;index" json:"author"`
	Category    string         `gorm:"size:50;not null;index" json:"category"`
	Era         string         `gorm:"size:50" json:"era"`
	Size        string         `gorm:"size:50" json:"size"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"size:500" json:"image_url"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Artifact) TableName() string {
	return "artifacts"
}

// ============================================================
// Borrow Ledger
// ============================================================

// BorrowRecord represents borrow_records table
type BorrowRecord struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	ArtifactID         uint           `gorm:"index;not null" json:"artifact_id"`
	BorrowerName       string         `gorm:"size:100;not null" json:"borrower_name"`
	BorrowerContact    string         `gorm:"size:100;not null" json:"borrower_contact"`
	BorrowPhotoURL     string         `gorm:"size:500;not null" json:"borrow_photo_url"`
	BorrowDate         time.Time      `gorm:"not null" json:"borrow_date"`
	ExpectedReturnDate *time.Time     `json:"expected_return_date"`
	Status             string         `gorm:"size:20;not null;default:'borrowed';index" json:"status"`
	Notes              string         `gorm:"type:text" json:"notes"`
	OperatorID         uint           `gorm:"index;not null" json:"operator_id"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Artifact Artifact `gorm:"foreignKey:ArtifactID" json:"artifact,omitempty"`
	Operator User     `gorm:"foreignKey:OperatorID" json:"-"`
}

func (BorrowRecord) TableName() string {
	return "borrow_records"
}

// IsOpen reports whether the loan has not been closed by a return
func (b *BorrowRecord) IsOpen() bool {
	return b.Status == string(domain.BorrowStatusBorrowed)
}

// IsOverdue reports whether the open loan has passed its expected return date
func (b *BorrowRecord) IsOverdue(now time.Time) bool {
	if !b.IsOpen() || b.ExpectedReturnDate == nil {
		return false
	}
	return now.After(*b.ExpectedReturnDate)
}

// BorrowRecordResponse DTO; status carries the derived overdue state
type BorrowRecordResponse struct {
	ID                 uint       `json:"id"`
	ArtifactID         uint       `json:"artifact_id"`
	ArtifactNo         string     `json:"artifact_no,omitempty"`
	ArtifactName       string     `json:"artifact_name,omitempty"`
	BorrowerName       string     `json:"borrower_name"`
	BorrowerContact    string     `json:"borrower_contact"`
	BorrowPhotoURL     string     `json:"borrow_photo_url"`
	BorrowDate         time.Time  `json:"borrow_date"`
	ExpectedReturnDate *time.Time `json:"expected_return_date"`
	Status             string     `json:"status"`
	Notes              string     `json:"notes,omitempty"`
	OperatorID         uint       `json:"operator_id"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (b *BorrowRecord) ToResponse() *BorrowRecordResponse {
	status := b.Status
	if b.IsOverdue(time.Now()) {
		status = string(domain.BorrowStatusOverdue)
	}
	resp := &BorrowRecordResponse{
		ID:                 b.ID,
		ArtifactID:         b.ArtifactID,
		BorrowerName:       b.BorrowerName,
		BorrowerContact:    b.BorrowerContact,
		BorrowPhotoURL:     b.BorrowPhotoURL,
		BorrowDate:         b.BorrowDate,
		ExpectedReturnDate: b.ExpectedReturnDate,
		Status:             status,
		Notes:              b.Notes,
		OperatorID:         b.OperatorID,
		CreatedAt:          b.CreatedAt,
	}
	if b.Artifact.ID != 0 {
		resp.ArtifactNo = b.Artifact.ArtifactNo
		resp.ArtifactName = b.Artifact.Name
	}
	return resp
}

// ============================================================
// Return / Verification
// ============================================================

// ComparisonResultJSON stores the engine verdict as a JSON column
type ComparisonResultJSON struct {
	domain.ComparisonResult
}

// Value implements driver.Valuer
func (c ComparisonResultJSON) Value() (driver.Value, error) {
	return json.Marshal(c.ComparisonResult)
}

// Scan implements sql.Scanner
func (c *ComparisonResultJSON) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported comparison result column type %T", value)
	}
	return json.Unmarshal(data, &c.ComparisonResult)
}

// GormDataType tells GORM to use a JSON column
func (ComparisonResultJSON) GormDataType() string {
	return "json"
}

// ReturnRecord represents return_records table.
// borrow_record_id is unique: a loan can be closed by at most one return.
type ReturnRecord struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	BorrowRecordID   uint                 `gorm:"uniqueIndex;not null" json:"borrow_record_id"`
	ReturnPhotoURL   string               `gorm:"size:500;not null" json:"return_photo_url"`
	ReturnDate       time.Time            `gorm:"not null" json:"return_date"`
	ComparisonResult ComparisonResultJSON `gorm:"type:json" json:"comparison_result"`
	AIConclusion     string               `gorm:"size:20;not null" json:"ai_conclusion"`
	FinalConclusion  *string              `gorm:"size:20;index" json:"final_conclusion"`
	ReviewedBy       *uint                `gorm:"index" json:"reviewed_by"`
	ReviewedAt       *time.Time           `json:"reviewed_at"`
	Notes            string               `gorm:"type:text" json:"notes"`
	OperatorID       uint                 `gorm:"index;not null" json:"operator_id"`
	CreatedAt        time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt       `gorm:"index" json:"-"`

	BorrowRecord BorrowRecord `gorm:"foreignKey:BorrowRecordID" json:"borrow_record,omitempty"`
	Operator     User         `gorm:"foreignKey:OperatorID" json:"-"`
}

func (ReturnRecord) TableName() string {
	return "return_records"
}

// IsReviewed reports whether an appraiser has issued a final conclusion
func (r *ReturnRecord) IsReviewed() bool {
	return r.FinalConclusion != nil
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Artifact{},
		&BorrowRecord{},
		&ReturnRecord{},
	)
}
