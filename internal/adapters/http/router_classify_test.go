package httpadapter

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/document-classifier/internal/observability/metrics"
)

func TestHealthzEndpoint(t *testing.T) {
	handler := NewRouter(testConfig(), &serviceFake{}, nil).Handler()
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id header")
	}
}

func TestClassifyFileSuccess(t *testing.T) {
	svc := &serviceFake{}
	handler := NewRouter(testConfig(), svc, nil).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, multipartRequest(t, "/classify_file", formFile{"file", "invoice.pdf", "%PDF-1.4"}))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, key := range []string{"file_name", "file_type", "confidence", "processed_at", "text_content", "classified_at"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("response missing %q: %v", key, body)
		}
	}
	if body["file_name"] != "invoice.pdf" || body["file_type"] != "invoice" {
		t.Fatalf("unexpected response: %v", body)
	}
	if len(svc.contents) != 1 || svc.contents[0] != "%PDF-1.4" {
		t.Fatalf("upload content not passed through: %v", svc.contents)
	}
}

func TestClassifyFileWithoutFileFieldReturns400(t *testing.T) {
	svc := &serviceFake{}
	handler := NewRouter(testConfig(), svc, nil).Handler()

	req := multipartRequest(t, "/classify_file",
		formFile{"file1", "a.pdf", "x"},
		formFile{"file2", "b.pdf", "y"},
	)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "No file provided") {
		t.Fatalf("unexpected body: %s", res.Body.String())
	}
	if len(svc.uploads) != 0 {
		t.Fatalf("service must not be called")
	}
}

func TestClassifyFileNonMultipartReturns400(t *testing.T) {
	handler := NewRouter(testConfig(), &serviceFake{}, nil).Handler()
	req := httptest.NewRequest(http.MethodPost, "/classify_file", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestClassifyFilesBatch(t *testing.T) {
	svc := &serviceFake{}
	handler := NewRouter(testConfig(), svc, nil).Handler()

	req := multipartRequest(t, "/classify_files",
		formFile{"files[]", "a.pdf", "one"},
		formFile{"files[]", "b.xyz", "two"},
		formFile{"files", "c.jpg", "three"},
	)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var body struct {
		Processed int              `json:"processed"`
		Results   []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Processed != 3 || len(body.Results) != 3 {
		t.Fatalf("unexpected batch response: %+v", body)
	}
	if got := strings.Join([]string{svc.uploads[0].Filename, svc.uploads[1].Filename, svc.uploads[2].Filename}, ","); got != "a.pdf,b.xyz,c.jpg" {
		t.Fatalf("unexpected upload order: %s", got)
	}
}

func TestClassifyFilesKeepsPartWithEmptyFilename(t *testing.T) {
	svc := &serviceFake{}
	handler := NewRouter(testConfig(), svc, nil).Handler()

	var payload bytes.Buffer
	writer := multipart.NewWriter(&payload)
	part, err := writer.CreateFormFile("files[]", "a.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	_, _ = part.Write([]byte("one"))
	if part, err = writer.CreateFormFile("files[]", ""); err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	_, _ = part.Write([]byte("two"))
	if err := writer.WriteField("files", "not a file"); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/classify_files", &payload)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var body struct {
		Processed int              `json:"processed"`
		Results   []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Processed != 2 || len(body.Results) != 2 {
		t.Fatalf("expected both file parts processed, got %+v", body)
	}
	if len(svc.uploads) != 2 || svc.uploads[0].Filename != "a.pdf" || svc.uploads[1].Filename != "" {
		t.Fatalf("unexpected uploads: %+v", svc.uploads)
	}
	if svc.contents[1] != "two" {
		t.Fatalf("unexpected content of unnamed part: %q", svc.contents[1])
	}
	if body.Results[1]["error"] != "invalid type" {
		t.Fatalf("expected unnamed part to be reported as invalid type, got %+v", body.Results[1])
	}
}

func TestClassifyFilesOversizedBodyReturns413(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 64
	handler := NewRouter(cfg, &serviceFake{}, nil).Handler()

	req := multipartRequest(t, "/classify_files", formFile{"files[]", "a.pdf", strings.Repeat("x", 256)})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", res.Code, res.Body.String())
	}
}

func TestClassifyFilesWithoutFilesReturns400(t *testing.T) {
	handler := NewRouter(testConfig(), &serviceFake{}, nil).Handler()
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, multipartRequest(t, "/classify_files", formFile{"file", "a.pdf", "x"}))

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	handler := NewRouter(testConfig(), &serviceFake{}, nil).Handler()
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/categories", nil))

	var body struct {
		Labels    []string `json:"labels"`
		Threshold float64  `json:"confidence_threshold"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if strings.Join(body.Labels, ",") != "invoice,bank_statement,drivers_license" || body.Threshold != 0.3 {
		t.Fatalf("unexpected categories: %+v", body)
	}
}

func TestMetricsEndpointExposedWhenEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = true
	handler := NewRouter(cfg, &serviceFake{}, metrics.NewHTTPServerMetrics(serviceName)).Handler()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `docclass_http_requests_total{method="GET",path="GET /healthz"`) {
		t.Fatalf("expected healthz request counter, got:\n%s", res.Body.String())
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	handler := NewRouter(testConfig(), &serviceFake{}, nil).Handler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if got := res.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected request id echo, got %q", got)
	}
}
