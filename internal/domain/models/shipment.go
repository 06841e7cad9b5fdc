package models

import "time"

// Shipment is the proforma-invoice scoped aggregate. One shipment groups the
// products, code list entries, traceability records and lab records of a
// single export consignment, and is the unit of reconciliation.
type Shipment struct {
	ID          string    `json:"id"`
	InvoiceNo   string    `json:"invoice_no"`
	InvoiceDate time.Time `json:"invoice_date"`
	Buyer       string    `json:"buyer,omitempty"`
	Port        string    `json:"port,omitempty"`
}

// Product is one shipment line item. Grade requirements partition the
// required total into per-grade carton quotas.
type Product struct {
	ID                string             `json:"id"`
	ShipmentID        string             `json:"shipment_id"`
	ProductCode       string             `json:"product_code"`
	Species           string             `json:"species,omitempty"`
	GradeRequirements map[string]float64 `json:"grade_requirements"`
	RequiredTotal     float64            `json:"required_total"`
}

// GradeRequirement is the detail-row form of a single grade quota, used when
// the backend stores grade breakdowns as a child collection of the product.
type GradeRequirement struct {
	ProductID       string  `json:"product_id"`
	Grade           string  `json:"grade"`
	RequiredCartons float64 `json:"required_cartons"`
}

// CodeListEntry allocates part of a product's carton total to a
// farmer-sourced batch code. Many entries share one product; together their
// declared totals must not exceed the product requirement.
type CodeListEntry struct {
	ID            string             `json:"id"`
	ShipmentID    string             `json:"shipment_id"`
	ProductID     string             `json:"product_id"`
	Code          string             `json:"code"`
	FarmerID      string             `json:"farmer_id"`
	FarmerName    string             `json:"farmer_name,omitempty"`
	Grades        map[string]float64 `json:"grades"`
	DeclaredTotal float64            `json:"declared_total"`
}

// GradeSum returns the sum of the entry's per-grade allocations.
func (e CodeListEntry) GradeSum() float64 {
	var total float64
	for _, qty := range e.Grades {
		total += qty
	}
	return total
}

// Balance is the quantity-ledger view of one product: how many cartons the
// product requires, how many are already allocated to code list entries, and
// how many remain.
type Balance struct {
	Required  float64 `json:"required"`
	Allocated float64 `json:"allocated"`
	Available float64 `json:"available"`
}
