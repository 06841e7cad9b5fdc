package exportapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaexport/seatrace/internal/config"
	"github.com/aquaexport/seatrace/internal/domain/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.BackendConfig{
		BaseURL: srv.URL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
	})
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.Product{ID: "prod-1"})
	})

	_, err := client.GetProduct(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestListEntriesFiltersByShipment(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/code-list-entries", r.URL.Path)
		assert.Equal(t, "ship-1", r.URL.Query().Get("shipment_id"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.CodeListEntry{{ID: "e1", Code: "C-1"}})
	})

	entries, err := client.ListEntries(context.Background(), "ship-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "C-1", entries[0].Code)
}

func TestClientMapsBackendErrorEnvelope(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": {"message": "code already exists", "code": 409}}`))
	})

	_, err := client.CreateEntry(context.Background(), models.CodeListEntry{Code: "C-1"})
	var transportErr *models.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.IsDuplicate())
	assert.False(t, transportErr.Transient())
	assert.Contains(t, transportErr.Error(), "code already exists")
}

func TestClientMapsServerErrorAsTransient(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetShipment(context.Background(), "ship-1")
	var transportErr *models.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Transient())
}

func TestClientMapsUnreachableBackend(t *testing.T) {
	client := NewClient(config.BackendConfig{
		BaseURL: "http://127.0.0.1:1", // nothing listens there
		Token:   "test-token",
		Timeout: 500 * time.Millisecond,
	})

	_, err := client.GetShipment(context.Background(), "ship-1")
	var transportErr *models.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 0, transportErr.StatusCode)
	assert.True(t, transportErr.Transient())
}

func TestGetTraceabilityByCodeNotFoundOnEmptyList(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "C-9", r.URL.Query().Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.GetTraceabilityByCode(context.Background(), "ship-1", "C-9")
	var transportErr *models.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.IsNotFound())
}

func TestDeleteEntry(t *testing.T) {
	var gotMethod, gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteEntry(context.Background(), "entry-7"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/code-list-entries/entry-7", gotPath)
}

func TestCreateGradeRequirementsReplacesCollection(t *testing.T) {
	var gotMethod string
	var gotRows []models.GradeRequirement
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRows))
		w.WriteHeader(http.StatusOK)
	})

	rows := []models.GradeRequirement{{ProductID: "prod-1", Grade: "A", RequiredCartons: 30}}
	require.NoError(t, client.CreateGradeRequirements(context.Background(), "prod-1", rows))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, rows, gotRows)
}

func TestClientTimeoutSurfacesAsTransport(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetShipment(ctx, "ship-1")
	var transportErr *models.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, errors.Is(transportErr.Err, context.DeadlineExceeded) || transportErr.StatusCode == 0)
}
