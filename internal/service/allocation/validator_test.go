package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaexport/seatrace/internal/domain/models"
)

func testProduct() models.Product {
	return models.Product{
		ID:          "prod-1",
		ShipmentID:  "ship-1",
		ProductCode: "HLSO-16/20",
		GradeRequirements: map[string]float64{
			"A": 30,
			"B": 20,
		},
		RequiredTotal: 50,
	}
}

func testEntry() models.CodeListEntry {
	return models.CodeListEntry{
		ShipmentID:    "ship-1",
		ProductID:     "prod-1",
		Code:          "C-101",
		FarmerID:      "farm-7",
		FarmerName:    "Delta Hatchery",
		Grades:        map[string]float64{"A": 20, "B": 10},
		DeclaredTotal: 30,
	}
}

func openBalance() models.Balance {
	return models.Balance{Required: 50, Allocated: 0, Available: 50}
}

func TestValidateAllocationOk(t *testing.T) {
	result := ValidateAllocation(testEntry(), testProduct(), nil, openBalance())
	assert.True(t, result.Ok())
	assert.Empty(t, result.Violations)
}

func TestValidateAllocationMissingFieldsCollected(t *testing.T) {
	entry := testEntry()
	entry.Code = ""
	entry.FarmerID = "  "

	result := ValidateAllocation(entry, testProduct(), nil, openBalance())
	require.False(t, result.Ok())
	assert.Equal(t, []string{"Missing Code", "Missing Farmer"}, result.Violations)
}

func TestValidateAllocationDuplicateCode(t *testing.T) {
	sibling := testEntry()
	sibling.ID = "entry-9"
	sibling.FarmerName = "Mekong Farms"

	result := ValidateAllocation(testEntry(), testProduct(), []models.CodeListEntry{sibling}, openBalance())
	require.False(t, result.Ok())
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], `"C-101"`)
	assert.Contains(t, result.Violations[0], "entry-9")
}

func TestValidateAllocationCodeIsCaseSensitive(t *testing.T) {
	sibling := testEntry()
	sibling.ID = "entry-9"
	sibling.Code = "c-101"

	result := ValidateAllocation(testEntry(), testProduct(), []models.CodeListEntry{sibling}, openBalance())
	assert.True(t, result.Ok())
}

func TestValidateAllocationEditSkipsItself(t *testing.T) {
	entry := testEntry()
	entry.ID = "entry-1"
	persisted := entry

	result := ValidateAllocation(entry, testProduct(), []models.CodeListEntry{persisted}, openBalance())
	assert.True(t, result.Ok())
}

func TestValidateAllocationGradeCapNamesOffenders(t *testing.T) {
	entry := testEntry()
	entry.Grades = map[string]float64{"A": 35, "B": 10}
	entry.DeclaredTotal = 45

	result := ValidateAllocation(entry, testProduct(), nil, openBalance())
	require.False(t, result.Ok())
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "grade A")
	assert.Contains(t, result.Violations[0], "35.00")
	assert.Contains(t, result.Violations[0], "30.00")
	assert.NotContains(t, result.Violations[0], "grade B")
}

func TestValidateAllocationGradeCapListsEveryOffender(t *testing.T) {
	entry := testEntry()
	entry.Grades = map[string]float64{"A": 31, "B": 22}
	entry.DeclaredTotal = 53

	result := ValidateAllocation(entry, testProduct(), nil, openBalance())
	require.False(t, result.Ok())
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "grade A")
	assert.Contains(t, result.Violations[0], "grade B")
}

func TestValidateAllocationTotalMismatch(t *testing.T) {
	entry := testEntry()
	entry.DeclaredTotal = 31

	result := ValidateAllocation(entry, testProduct(), nil, openBalance())
	require.False(t, result.Ok())
	assert.Contains(t, result.Violations[0], "Total Mismatch")
}

func TestValidateAllocationTotalWithinEpsilon(t *testing.T) {
	entry := testEntry()
	entry.DeclaredTotal = 30.005

	result := ValidateAllocation(entry, testProduct(), nil, openBalance())
	assert.True(t, result.Ok())
}

func TestValidateAllocationBalanceExceeded(t *testing.T) {
	entry := testEntry()
	balance := models.Balance{Required: 50, Allocated: 25, Available: 25}

	result := ValidateAllocation(entry, testProduct(), nil, balance)
	require.False(t, result.Ok())
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "required 50.00")
	assert.Contains(t, result.Violations[0], "allocated 25.00")
	assert.Contains(t, result.Violations[0], "available 25.00")
	assert.Contains(t, result.Violations[0], "attempted 30.00")
}

func TestValidateAllocationFullyAllocatedProduct(t *testing.T) {
	entry := testEntry()
	entry.Grades = map[string]float64{"A": 1}
	entry.DeclaredTotal = 1
	exhausted := models.Balance{Required: 50, Allocated: 50, Available: 0}

	result := ValidateAllocation(entry, testProduct(), nil, exhausted)
	require.False(t, result.Ok())
	assert.Contains(t, result.Violations[0], "available 0.00")
}

func TestValidateAllocationRejectsAllZeroGrades(t *testing.T) {
	entry := testEntry()
	entry.Grades = map[string]float64{"A": 0, "B": 0}
	entry.DeclaredTotal = 0

	result := ValidateAllocation(entry, testProduct(), nil, openBalance())
	require.False(t, result.Ok())
	assert.Contains(t, result.Violations[0], "greater than zero")
}

func TestValidateAllocationDuplicateWinsOverOtherViolations(t *testing.T) {
	// Category order: a duplicate code is reported alone even when the
	// entry would also fail grade and balance checks.
	entry := testEntry()
	entry.Grades = map[string]float64{"A": 99}
	entry.DeclaredTotal = 99

	sibling := testEntry()
	sibling.ID = "entry-9"

	result := ValidateAllocation(entry, testProduct(), []models.CodeListEntry{sibling}, openBalance())
	require.False(t, result.Ok())
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "already used")
}
