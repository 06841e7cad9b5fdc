// Package allocation holds the pre-save validators for code list entries and
// lab record dates. Validators are pure functions over snapshots the caller
// has already fetched; persistence and re-fetching the ledger afterwards are
// the caller's job.
package allocation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aquaexport/seatrace/internal/domain/models"
)

// QuantityEpsilon is the tolerance applied to carton quantity comparisons.
// Quantities travel as floats, so exact equality is off the table.
const QuantityEpsilon = 0.01

// ValidateAllocation checks a candidate code list entry against its product
// requirements, its sibling entries and the current balance.
//
// Checks run in fixed category order and stop at the first failing category;
// within a category every violation is collected so the user sees the whole
// picture at once. siblings must be the shipment's existing entries; an
// entry with the candidate's own ID is skipped, which makes edits safe.
func ValidateAllocation(entry models.CodeListEntry, product models.Product, siblings []models.CodeListEntry, balance models.Balance) models.ValidationResult {
	if res := requiredFields(entry); !res.Ok() {
		return res
	}
	if res := codeUnique(entry, siblings); !res.Ok() {
		return res
	}
	if res := gradeCaps(entry, product); !res.Ok() {
		return res
	}
	if res := sumMatchesDeclared(entry); !res.Ok() {
		return res
	}
	if res := withinBalance(entry, balance); !res.Ok() {
		return res
	}
	return nonTrivial(entry)
}

func requiredFields(entry models.CodeListEntry) models.ValidationResult {
	var violations []string
	if strings.TrimSpace(entry.Code) == "" {
		violations = append(violations, "Missing Code")
	}
	if strings.TrimSpace(entry.FarmerID) == "" {
		violations = append(violations, "Missing Farmer")
	}
	if strings.TrimSpace(entry.ProductID) == "" {
		violations = append(violations, "Missing Product Reference")
	}
	return models.ValidationResult{Violations: violations}
}

// codeUnique enforces one code per shipment. Comparison is a case-sensitive
// exact match; C12 and c12 are different codes.
func codeUnique(entry models.CodeListEntry, siblings []models.CodeListEntry) models.ValidationResult {
	for _, other := range siblings {
		if other.ID == entry.ID && entry.ID != "" {
			continue
		}
		if other.Code == entry.Code {
			return models.Invalid(fmt.Sprintf(
				"Code %q is already used by entry %s (farmer %s)",
				entry.Code, other.ID, other.FarmerName))
		}
	}
	return models.Valid()
}

// gradeCaps compares each grade requirement against the candidate's
// allocation for that grade. Every offending grade lands in one combined
// message so the user corrects them in a single pass.
func gradeCaps(entry models.CodeListEntry, product models.Product) models.ValidationResult {
	grades := make([]string, 0, len(product.GradeRequirements))
	for grade := range product.GradeRequirements {
		grades = append(grades, grade)
	}
	sort.Strings(grades)

	var offending []string
	for _, grade := range grades {
		required := product.GradeRequirements[grade]
		allocated := entry.Grades[grade]
		if allocated > required+QuantityEpsilon {
			offending = append(offending, fmt.Sprintf(
				"grade %s: allocated %.2f exceeds requirement %.2f by %.2f cartons",
				grade, allocated, required, allocated-required))
		}
	}

	if len(offending) > 0 {
		return models.Invalid("Grade allocation over requirement: " + strings.Join(offending, "; "))
	}
	return models.Valid()
}

func sumMatchesDeclared(entry models.CodeListEntry) models.ValidationResult {
	sum := entry.GradeSum()
	diff := sum - entry.DeclaredTotal
	if diff > QuantityEpsilon || diff < -QuantityEpsilon {
		return models.Invalid(fmt.Sprintf(
			"Total Mismatch: declared total is %.2f but grade values sum to %.2f",
			entry.DeclaredTotal, sum))
	}
	return models.Valid()
}

func withinBalance(entry models.CodeListEntry, balance models.Balance) models.ValidationResult {
	attempted := entry.GradeSum()
	if attempted > balance.Available+QuantityEpsilon {
		return models.Invalid(fmt.Sprintf(
			"Allocation exceeds available balance: required %.2f, allocated %.2f, available %.2f, attempted %.2f",
			balance.Required, balance.Allocated, balance.Available, attempted))
	}
	return models.Valid()
}

func nonTrivial(entry models.CodeListEntry) models.ValidationResult {
	for _, qty := range entry.Grades {
		if qty > 0 {
			return models.Valid()
		}
	}
	return models.Invalid("At least one grade quantity must be greater than zero")
}
