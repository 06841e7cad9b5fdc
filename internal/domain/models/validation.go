package models

import "time"

// ValidationResult carries the outcome of a pre-save check: either Ok, or a
// list of human-readable violations the user must correct before the save
// can proceed.
type ValidationResult struct {
	Violations []string `json:"violations,omitempty"`
}

// Ok reports whether the candidate passed every check.
func (r ValidationResult) Ok() bool {
	return len(r.Violations) == 0
}

// Valid is the passing result.
func Valid() ValidationResult {
	return ValidationResult{}
}

// Invalid builds a failing result from the given violation messages.
func Invalid(violations ...string) ValidationResult {
	return ValidationResult{Violations: violations}
}

// MismatchReport is one advisory finding from a reconciliation scan: a
// product whose required total and summed code-list allocations disagree by
// more than the quantity tolerance. Reports never block anything.
type MismatchReport struct {
	ShipmentID     string    `bson:"shipment_id" json:"shipment_id"`
	ProductID      string    `bson:"product_id" json:"product_id"`
	ProductCode    string    `bson:"product_code" json:"product_code"`
	RequiredTotal  float64   `bson:"required_total" json:"required_total"`
	AllocatedTotal float64   `bson:"allocated_total" json:"allocated_total"`
	Difference     float64   `bson:"difference" json:"difference"`
	DetectedAt     time.Time `bson:"detected_at" json:"detected_at"`
}
