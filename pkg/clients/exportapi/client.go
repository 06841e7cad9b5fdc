package exportapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aquaexport/seatrace/internal/config"
	"github.com/aquaexport/seatrace/internal/domain/models"
)

// APIClient talks to the export-documentation backend over its JSON REST
// API. Every request carries the static bearer token and is bounded by the
// blanket timeout from configuration.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a backend API client from the provided configuration.
func NewClient(cfg config.BackendConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{httpClient: restyClient}
}

// apiError mirrors the backend's error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// wrap converts a resty outcome into our error taxonomy. A nil return means
// the call succeeded with a 2xx status.
func wrap(op string, resp *resty.Response, err error, apiErr *apiError) error {
	if err != nil {
		return &models.TransportError{Op: op, Err: err}
	}
	if resp.IsError() {
		message := resp.Status()
		if apiErr != nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return &models.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("%s", message),
		}
	}
	return nil
}

// GetShipment fetches one shipment by id.
func (c *APIClient) GetShipment(ctx context.Context, shipmentID string) (*models.Shipment, error) {
	result := new(models.Shipment)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/shipments/%s", shipmentID))
	if wErr := wrap("get shipment", resp, err, apiErr); wErr != nil {
		return nil, wErr
	}
	return result, nil
}

// GetProduct fetches one product (shipment line item) by id.
func (c *APIClient) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	result := new(models.Product)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/products/%s", productID))
	if wErr := wrap("get product", resp, err, apiErr); wErr != nil {
		return nil, wErr
	}
	return result, nil
}

// ListProducts returns every product belonging to a shipment.
func (c *APIClient) ListProducts(ctx context.Context, shipmentID string) ([]models.Product, error) {
	var result []models.Product
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("shipment_id", shipmentID).
		SetResult(&result).
		SetError(apiErr).
		Get("/products")
	if wErr := wrap("list products", resp, err, apiErr); wErr != nil {
		return nil, wErr
	}
	return result, nil
}

// ListEntries returns every code list entry belonging to a shipment.
func (c *APIClient) ListEntries(ctx context.Context, shipmentID string) ([]models.CodeListEntry, error) {
	var result []models.CodeListEntry
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("shipment_id", shipmentID).
		SetResult(&result).
		SetError(apiErr).
		Get("/code-list-entries")
	if wErr := wrap("list code list entries", resp, err, apiErr); wErr != nil {
		return nil, wErr
	}
	return result, nil
}

// ListEntriesByProduct returns the code list entries allocated against one
// product.
func (c *APIClient) ListEntriesByProduct(ctx context.Context, productID string) ([]models.CodeListEntry, error) {
	var result []models.CodeListEntry
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("product_id", productID).
		SetResult(&result).
		SetError(apiErr).
		Get("/code-list-entries")
	if wErr := wrap("list entries by product", resp, err, apiErr); wErr != nil {
		return nil, wErr
	}
	return result, nil
}

// CreateEntry persists a new code list entry and returns the stored row.
func (c *APIClient) CreateEntry(ctx context.Context, entry models.CodeListEntry) (*models.CodeListEntry, error) {
	result := new(models.CodeListEntry)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(entry).
		SetResult(result).
		SetError(apiErr).
		Post("/code-list-entries")
	if wErr := wrap("create code list entry", resp, err, apiErr); wErr != nil {
		return nil, wErr
	}
	return result, nil
}

// UpdateEntry replaces an existing code list entry.
func (c *APIClient) UpdateEntry(ctx context.Context, entry models.CodeListEntry) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(entry).
		SetError(apiErr).
		Put(fmt.Sprintf("/code-list-entries/%s", entry.ID))
	return wrap("update code list entry", resp, err, apiErr)
}

// DeleteEntry removes a code list entry by id.
func (c *APIClient) DeleteEntry(ctx context.Context, entryID string) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetError(apiErr).
		Delete(fmt.Sprintf("/code-list-entries/%s", entryID))
	return wrap("delete code list entry", resp, err, apiErr)
}

// CreateProduct persists a new product and returns the stored row with its
// backend-assigned id.
func (c *APIClient) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	result := new(models.Product)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(product).
		SetResult(result).
		SetError(apiErr).
		Post("/products")
	if wErr := wrap("create product", resp, err, apiErr); wErr != nil {
		return nil, wErr
	}
	return result, nil
}

// CreateGradeRequirements replaces the grade breakdown rows of a product.
func (c *APIClient) CreateGradeRequirements(ctx context.Context, productID string, rows []models.GradeRequirement) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(rows).
		SetError(apiErr).
		Put(fmt.Sprintf("/products/%s/grade-requirements", productID))
	return wrap("create grade requirements", resp, err, apiErr)
}

// DeleteProduct removes a product by id. Used as the compensating action
// when detail-row creation fails after the product itself persisted.
func (c *APIClient) DeleteProduct(ctx context.Context, productID string) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetError(apiErr).
		Delete(fmt.Sprintf("/products/%s", productID))
	return wrap("delete product", resp, err, apiErr)
}

// GetTraceabilityByCode fetches the traceability record for a batch code
// within a shipment, or a not-found TransportError when none exists.
func (c *APIClient) GetTraceabilityByCode(ctx context.Context, shipmentID, code string) (*models.TraceabilityRecord, error) {
	var result []models.TraceabilityRecord
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"shipment_id": shipmentID,
			"code":        code,
		}).
		SetResult(&result).
		SetError(apiErr).
		Get("/traceability-records")
	if wErr := wrap("get traceability record", resp, err, apiErr); wErr != nil {
		return nil, wErr
	}
	if len(result) == 0 {
		return nil, &models.TransportError{
			Op:         "get traceability record",
			StatusCode: 404,
			Err:        fmt.Errorf("no traceability record for code %s", code),
		}
	}
	return &result[0], nil
}

// CreateLabRecord persists a new lab record and returns the stored row.
func (c *APIClient) CreateLabRecord(ctx context.Context, record models.LabRecord) (*models.LabRecord, error) {
	result := new(models.LabRecord)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(record).
		SetResult(result).
		SetError(apiErr).
		Post("/lab-records")
	if wErr := wrap("create lab record", resp, err, apiErr); wErr != nil {
		return nil, wErr
	}
	return result, nil
}

// Healthy pings the backend health endpoint. Used at startup to surface
// misconfiguration early rather than on the first user request.
func (c *APIClient) Healthy(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := c.httpClient.R().
		SetContext(pingCtx).
		Get("/healthz")
	return wrap("backend health check", resp, err, nil)
}
