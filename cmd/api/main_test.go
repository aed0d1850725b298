package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/t-fbd/loc-api/internal/loc"
	"github.com/t-fbd/loc-api/internal/metrics"
	"github.com/t-fbd/loc-api/internal/models"
	"github.com/t-fbd/loc-api/mocks"
)

func newTestServer(t *testing.T, expectWrite bool) (*server, *mocks.MockJobProducer, *mocks.MockStatusStore) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	prod := mocks.NewMockJobProducer(ctrl)
	if !expectWrite {
		prod.EXPECT().WriteJob(gomock.Any(), gomock.Any()).Times(0)
	}

	statusStore := mocks.NewMockStatusStore(ctrl)
	resolver := loc.NewClient(loc.Config{BaseURL: "http://catalog.test/"})

	return newServer(prod, statusStore, resolver), prod, statusStore
}

func TestHandleHarvest(t *testing.T) {
	srv, prod, statusStore := newTestServer(t, true)

	var written models.HarvestJob
	prod.EXPECT().WriteJob(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, job models.HarvestJob) error {
		written = job
		return nil
	})
	statusStore.EXPECT().SetStatus(gomock.Any(), gomock.Any()).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/harvest?kind=collection&collection=civil+war+maps&max_pages=3&session_id=mine", nil)
	rec := httptest.NewRecorder()
	srv.handleHarvest(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d: %s", http.StatusAccepted, rec.Code, rec.Body.String())
	}

	var payload harvestResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.SessionID == "" || payload.SessionID == "mine" {
		t.Fatalf("expected a generated session id, got %q", payload.SessionID)
	}
	if payload.Status != models.StatusQueued || payload.Kind != models.HarvestCollection {
		t.Fatalf("unexpected status payload: %+v", payload.HarvestStatus)
	}
	if payload.FirstPage != "http://catalog.test/collections/civil-war-maps/?fo=json&&sp=1" {
		t.Fatalf("unexpected first page: %s", payload.FirstPage)
	}
	if written.SessionID != payload.SessionID || written.Collection != "civil war maps" || written.MaxPages != 3 {
		t.Fatalf("unexpected job: %+v", written)
	}
}

func TestHandleHarvestFormBody(t *testing.T) {
	srv, prod, statusStore := newTestServer(t, true)
	prod.EXPECT().WriteJob(gomock.Any(), gomock.Any()).Return(nil)
	statusStore.EXPECT().SetStatus(gomock.Any(), gomock.Any()).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/harvest", strings.NewReader("kind=format&media=maps&q=ohio+river"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.handleHarvest(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, rec.Code)
	}
}

func TestHandleHarvestEmptySearch(t *testing.T) {
	srv, _, statusStore := newTestServer(t, false)
	statusStore.EXPECT().SetStatus(gomock.Any(), gomock.Any()).Times(0)

	req := httptest.NewRequest(http.MethodPost, "/harvest", nil)
	rec := httptest.NewRecorder()
	srv.handleHarvest(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandleHarvestMethodNotAllowed(t *testing.T) {
	srv, _, statusStore := newTestServer(t, false)
	statusStore.EXPECT().SetStatus(gomock.Any(), gomock.Any()).Times(0)

	req := httptest.NewRequest(http.MethodGet, "/harvest?q=maps", nil)
	rec := httptest.NewRecorder()
	srv.handleHarvest(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestHandleHarvestEnqueueFailure(t *testing.T) {
	srv, prod, statusStore := newTestServer(t, true)
	prod.EXPECT().WriteJob(gomock.Any(), gomock.Any()).Return(context.DeadlineExceeded)
	statusStore.EXPECT().SetStatus(gomock.Any(), gomock.Any()).Times(0)

	req := httptest.NewRequest(http.MethodPost, "/harvest?q=maps", nil)
	rec := httptest.NewRecorder()
	srv.handleHarvest(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rec.Code)
	}
}

func TestHandleHarvestStatusMatchesCreatedJob(t *testing.T) {
	srv, prod, statusStore := newTestServer(t, true)
	prod.EXPECT().WriteJob(gomock.Any(), gomock.Any()).Return(nil)
	statusStore.EXPECT().SetStatus(gomock.Any(), gomock.Any()).Return(nil)

	createReq := httptest.NewRequest(http.MethodPost, "/harvest?q=maps", nil)
	createRec := httptest.NewRecorder()
	srv.handleHarvest(createRec, createReq)

	var created harvestResponse
	if err := json.NewDecoder(createRec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}

	statusStore.EXPECT().
		GetStatus(gomock.Any(), created.SessionID).
		Return(created.HarvestStatus, true, nil)

	statusReq := httptest.NewRequest(http.MethodGet, "/harvest/"+created.SessionID, nil)
	statusRec := httptest.NewRecorder()
	srv.handleHarvestStatus(statusRec, statusReq)

	if statusRec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, statusRec.Code)
	}

	var fetched models.HarvestStatus
	if err := json.NewDecoder(statusRec.Body).Decode(&fetched); err != nil {
		t.Fatalf("failed to decode status response: %v", err)
	}
	if fetched.SessionID != created.SessionID || fetched.Status != created.Status {
		t.Fatalf("expected %+v, got %+v", created.HarvestStatus, fetched)
	}
}

func TestHandleHarvestStatusNotFound(t *testing.T) {
	srv, _, statusStore := newTestServer(t, false)
	statusStore.EXPECT().GetStatus(gomock.Any(), gomock.Any()).Return(models.HarvestStatus{}, false, nil)

	req := httptest.NewRequest(http.MethodGet, "/harvest/does-not-exist", nil)
	rec := httptest.NewRecorder()
	srv.handleHarvestStatus(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandleHarvestStatusMissingID(t *testing.T) {
	srv, _, statusStore := newTestServer(t, false)
	statusStore.EXPECT().GetStatus(gomock.Any(), gomock.Any()).Times(0)

	req := httptest.NewRequest(http.MethodGet, "/harvest/", nil)
	rec := httptest.NewRecorder()
	srv.handleHarvestStatus(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandlePreview(t *testing.T) {
	srv, _, _ := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/preview?kind=format&media=maps&q=ohio&sp=2&c=25", nil)
	rec := httptest.NewRecorder()
	srv.handlePreview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["url"] != "http://catalog.test/maps/?fo=json&&q=ohio&c=25&sp=2" {
		t.Fatalf("unexpected preview url: %s", payload["url"])
	}
}

func TestHandlePreviewUnknownMedia(t *testing.T) {
	srv, _, _ := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/preview?kind=format&media=vhs", nil)
	rec := httptest.NewRecorder()
	srv.handlePreview(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestRoutesCountRequestsAndServeMetrics(t *testing.T) {
	srv, _, _ := newTestServer(t, false)
	handler := srv.routes()

	before := testutil.ToFloat64(metrics.APIRequests.WithLabelValues("preview", "400"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if got := testutil.ToFloat64(metrics.APIRequests.WithLabelValues("preview", "400")) - before; got != 1 {
		t.Fatalf("expected request counter +1, got %v", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "locapi_api_requests_total") {
		t.Fatal("expected api request counter in metrics output")
	}
}
