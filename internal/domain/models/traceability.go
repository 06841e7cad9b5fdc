package models

import "time"

// TraceabilityRecord links a batch code to its production run at the farm.
// BalanceCases is entered manually by the documentation officer; it is never
// derived from UsedCases, per current workflow.
type TraceabilityRecord struct {
	ID             string    `json:"id"`
	ShipmentID     string    `json:"shipment_id"`
	Code           string    `json:"code"`
	ProductionDate time.Time `json:"production_date"`
	RawMaterialKg  float64   `json:"raw_material_kg"`
	HeadlessKg     float64   `json:"headless_kg"`
	UsedCases      float64   `json:"used_cases"`
	BalanceCases   float64   `json:"balance_cases"`
}

// LabRecordType discriminates lab record variants. The variants differ only
// in how long after analysis the report may be completed.
type LabRecordType string

const (
	// LabRecordBAR is a bacteriological analysis report; completion is due
	// within six days of the analysis date.
	LabRecordBAR LabRecordType = "BAR"
	// LabRecordELISA is a contaminant screening; completion is due within one
	// day of the analysis date.
	LabRecordELISA LabRecordType = "ELISA"
)

// Valid reports whether t is a known record type.
func (t LabRecordType) Valid() bool {
	return t == LabRecordBAR || t == LabRecordELISA
}

// CompletionWindowDays returns the maximum day-granularity gap allowed
// between analysis and completion for this record type.
func (t LabRecordType) CompletionWindowDays() int {
	if t == LabRecordBAR {
		return 6
	}
	return 1
}

// LabRecord holds the dates and named numeric results of one lab test run
// against a batch code.
type LabRecord struct {
	ID             string             `json:"id"`
	ShipmentID     string             `json:"shipment_id"`
	ProductID      string             `json:"product_id,omitempty"`
	Code           string             `json:"code"`
	Type           LabRecordType      `json:"type"`
	AnalysisDate   time.Time          `json:"analysis_date"`
	CompletionDate time.Time          `json:"completion_date"`
	Results        map[string]float64 `json:"results,omitempty"`
}
