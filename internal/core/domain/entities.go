package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleStaff     Role = "staff"
	RoleAppraiser Role = "appraiser"
	RoleAdmin     Role = "admin"
)

// rank maps roles onto the staff < appraiser < admin privilege order
func (r Role) rank() int {
	switch r {
	case RoleStaff:
		return 1
	case RoleAppraiser:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	return r.rank() > 0
}

// AtLeast reports whether the role carries at least the given privilege
func (r Role) AtLeast(min Role) bool {
	return r.rank() >= min.rank() && r.rank() > 0
}

// CanReview reports whether the role may set the final conclusion
func (r Role) CanReview() bool {
	return r.AtLeast(RoleAppraiser)
}

// CanManage reports whether the role may delete records and manage users
func (r Role) CanManage() bool {
	return r == RoleAdmin
}

// BorrowStatus represents the lifecycle state of a loan
type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "borrowed"
	BorrowStatusReturned BorrowStatus = "returned"
	// BorrowStatusOverdue is derived from expected_return_date at read time,
	// never persisted.
	BorrowStatusOverdue BorrowStatus = "overdue"
)

// Conclusion represents an authenticity verdict
type Conclusion string

const (
	ConclusionAuthentic  Conclusion = "authentic"
	ConclusionSuspicious Conclusion = "suspicious"
	ConclusionFake       Conclusion = "fake"
)

// IsValid reports whether the conclusion is one of the known verdicts
func (c Conclusion) IsValid() bool {
	switch c {
	case ConclusionAuthentic, ConclusionSuspicious, ConclusionFake:
		return true
	}
	return false
}

// DimensionStatus represents the per-dimension verdict of a comparison
type DimensionStatus string

const (
	DimensionNormal     DimensionStatus = "normal"
	DimensionSuspicious DimensionStatus = "suspicious"
	DimensionAbnormal   DimensionStatus = "abnormal"
)

// ComparisonDimensions are the aspects the engine scores independently
var ComparisonDimensions = []string{
	"seal", "brushwork", "paper", "inscription", "composition", "watermark",
}

// DimensionResult is one scored aspect of a comparison
type DimensionResult struct {
	Status        DimensionStatus `json:"status"`
	Score         float64         `json:"score"`
	Description   string          `json:"description"`
	AnnotationURL *string         `json:"annotation_url"`
}

// ComparisonResult is the verdict returned by the comparison engine.
// It is produced once at return time and treated as evidence afterwards.
type ComparisonResult struct {
	Conclusion  Conclusion                 `json:"conclusion"`
	Confidence  float64                    `json:"confidence"`
	Dimensions  map[string]DimensionResult `json:"dimensions"`
	EvaluatedAt time.Time                  `json:"evaluated_at"`
}
