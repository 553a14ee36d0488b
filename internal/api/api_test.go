package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/clients"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
	"github.com/wys-platform/prices/internal/pkg/store/memstore"
	"github.com/wys-platform/prices/internal/service/catalog"
	"github.com/wys-platform/prices/internal/service/estimate"
	"github.com/wys-platform/prices/internal/service/exchange"
)

const bearer = "Bearer test-token"

type stubSource struct{}

func (stubSource) Quota(context.Context) (int, error) { return 1000, nil }

func (stubSource) Latest(context.Context) (map[string]float64, error) {
	return map[string]float64{"CLP": 950.5, "USD": 1}, nil
}

type stubProjects struct{}

func (p *stubProjects) GetProject(_ context.Context, id int64) (*clients.Project, error) {
	if id != 42 {
		return nil, constants.ErrDBNotFound
	}
	return &clients.Project{ID: id}, nil
}

func (p *stubProjects) LinkPriceGen(context.Context, int64, int64) error { return nil }

func newTestAPI(t *testing.T) *APIService {
	t.Helper()

	st := memstore.New()
	svc, err := NewAPIService(Config{AllowOrigins: []string{"*"}, BodyLimit: "5M"}, Services{
		Catalog:  catalog.NewService(st, catalog.Config{DefaultCountry: "chile"}),
		Estimate: estimate.NewService(st, estimate.Config{Projects: &stubProjects{}}),
		Exchange: exchange.NewService(st, stubSource{}, exchange.Config{MinQuota: 50}),
	})
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func catalogWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Chile"); err != nil {
		t.Fatal(err)
	}

	rows := [][]any{
		{"PRE", "MODULO", "PARAMETRO", "DETALLE", "ESTANDAR BAJO", "ESTANDAR MEDIO", "ESTANDAR ALTO"},
		{"", "OFICINA", "SEGURIDAD", "CAMARAS", 1, 2, 3},
		{"", "OFICINA", "SEGURIDAD", "ALARMAS", 10, 20, 30},
		{"BASE", "GASTOS GENERALES", "", "", 100, 200, 300},
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Chile", cell, &rows[i]); err != nil {
			t.Fatal(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func do(t *testing.T, h http.Handler, req *http.Request, out any) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
	return rec
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer)
	return req
}

func uploadRequest(t *testing.T, path, filename string, body []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = part.Write(body); err != nil {
		t.Fatal(err)
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", bearer)
	return req
}

func TestHealthNeedsNoToken(t *testing.T) {
	svc := newTestAPI(t)

	rec := do(t, svc, httptest.NewRequest(http.MethodGet, "/api/prices/health", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing request id header")
	}
}

func TestMissingToken(t *testing.T) {
	svc := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/prices/create", nil)
	var resp domain.ErrorResponse
	rec := do(t, svc, req, &resp)
	if rec.Code != http.StatusUnauthorized || resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d %+v", rec.Code, resp)
	}
}

func TestTokenUserIDIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(zap.NewNop()) })

	svc := newTestAPI(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 17}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	req := jsonRequest(http.MethodGet, "/api/prices/categories/999", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := do(t, svc, req, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var found bool
	for _, entry := range logs.All() {
		if entry.ContextMap()["user_id"] == int64(17) {
			found = true
		}
	}
	if !found {
		t.Error("no log entry carries the token's user_id")
	}
}

func TestUploadAndEstimate(t *testing.T) {
	svc := newTestAPI(t)

	var report catalog.UploadReport
	rec := do(t, svc, uploadRequest(t, "/api/prices/upload", "catalog.xlsx", catalogWorkbook(t)), &report)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	if len(report.Sheets) != 1 || report.Sheets[0].Country != "CHILE" {
		t.Fatalf("unexpected report %+v", report)
	}

	var listing catalog.Catalog
	rec = do(t, svc, jsonRequest(http.MethodGet, "/api/prices/create?subcategories=true", nil), &listing)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	if len(listing.Countries) != 1 || !listing.Countries[0].IsDefault {
		t.Errorf("expected CHILE as default country, got %+v", listing.Countries)
	}

	var seguridad *domain.Category
	for _, c := range listing.Categories {
		if c.Name == "SEGURIDAD" {
			seguridad = c
		}
	}
	if seguridad == nil || len(seguridad.Subcategories) != 2 {
		t.Fatalf("SEGURIDAD with two subcategories not listed: %+v", listing.Categories)
	}

	body := map[string]any{
		"country":    "chile",
		"m2":         80,
		"workspaces": []map[string]any{{"module": "OFICINA", "quantity": 3}},
		"categories": []map[string]any{{"id": seguridad.ID, "code": seguridad.Code, "name": seguridad.Name, "resp": "low"}},
	}

	var res estimate.Result
	rec = do(t, svc, jsonRequest(http.MethodPost, "/api/prices", body), &res)
	if rec.Code != http.StatusOK {
		t.Fatalf("estimate: %d %s", rec.Code, rec.Body.String())
	}
	// (1 + 10) * 3
	if res.Value != 33 {
		t.Errorf("expected 33, got %v", res.Value)
	}

	rec = do(t, svc, jsonRequest(http.MethodPost, "/api/prices/detail", body), &res)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail: %d %s", rec.Code, rec.Body.String())
	}
	if len(res.Categories) != 1 || len(res.Categories[0].Subcategories) != 2 {
		t.Fatalf("expected a breakdown, got %+v", res.Categories)
	}
}

func TestEstimateValidation(t *testing.T) {
	svc := newTestAPI(t)

	var resp domain.ErrorResponse
	rec := do(t, svc, jsonRequest(http.MethodPost, "/api/prices", map[string]any{"m2": -5}), &resp)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	for _, field := range []string{"country", "m2", "categories"} {
		if len(resp.Errors[field]) == 0 {
			t.Errorf("no problem reported for %s: %+v", field, resp.Errors)
		}
	}

	rec = do(t, svc, jsonRequest(http.MethodPost, "/api/prices", nil), &resp)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an empty body, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/prices", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer)
	rec = do(t, svc, req, &resp)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestUnknownCountry(t *testing.T) {
	svc := newTestAPI(t)

	body := map[string]any{
		"country":    "PERU",
		"m2":         10,
		"categories": []map[string]any{{"id": 1, "resp": "low"}},
	}
	var resp domain.ErrorResponse
	rec := do(t, svc, jsonRequest(http.MethodPost, "/api/prices", body), &resp)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(resp.Message, "PERU") {
		t.Errorf("message does not name the country: %q", resp.Message)
	}
}

func TestUploadRejectsBadFile(t *testing.T) {
	svc := newTestAPI(t)

	rec := do(t, svc, uploadRequest(t, "/api/prices/upload", "catalog.csv", []byte("a,b")), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = do(t, svc, jsonRequest(http.MethodPost, "/api/prices/upload", nil), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a file, got %d", rec.Code)
	}
}

func TestExchangeRoutes(t *testing.T) {
	svc := newTestAPI(t)

	var res exchange.Result
	rec := do(t, svc, jsonRequest(http.MethodGet, "/api/prices/exchange/clp", nil), &res)
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup: %d %s", rec.Code, rec.Body.String())
	}
	if res.Rate != 950.5 || res.Stale {
		t.Errorf("unexpected rate %+v", res)
	}

	rec = do(t, svc, jsonRequest(http.MethodGet, "/api/prices/exchange/XYZ", nil), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown currency, got %d", rec.Code)
	}

	var rates []*domain.ExchangeRate
	rec = do(t, svc, jsonRequest(http.MethodPost, "/api/prices/exchange/refresh", nil), &rates)
	if rec.Code != http.StatusOK || len(rates) != 2 {
		t.Errorf("refresh: %d %+v", rec.Code, rates)
	}
}

func TestSavedEstimateRoutes(t *testing.T) {
	svc := newTestAPI(t)

	rec := do(t, svc, jsonRequest(http.MethodGet, "/api/prices/saved/abc", nil), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	rec = do(t, svc, jsonRequest(http.MethodGet, "/api/prices/saved/42", nil), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	body := map[string]any{"project_id": 7, "value": 10, "country": "CHILE", "categories": []map[string]any{}}
	rec = do(t, svc, jsonRequest(http.MethodPost, "/api/prices/save", body), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown project, got %d %s", rec.Code, rec.Body.String())
	}
}
