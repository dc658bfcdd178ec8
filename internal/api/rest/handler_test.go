package rest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "device-inspector/internal/application"
	"device-inspector/internal/domain/entity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubInspector struct {
	result  *entity.InspectionResult
	err     error
	request app.InspectionRequest
	history []*entity.InspectionResult
	limit   int
}

func (s *stubInspector) Inspect(ctx context.Context, req app.InspectionRequest) (*entity.InspectionResult, error) {
	s.request = req
	return s.result, s.err
}

func (s *stubInspector) History(ctx context.Context, limit int) ([]*entity.InspectionResult, error) {
	s.limit = limit
	return s.history, nil
}

func (s *stubInspector) Find(ctx context.Context, id string) (*entity.InspectionResult, error) {
	if s.result != nil && s.result.ID == id {
		return s.result, nil
	}
	return nil, fmt.Errorf("inspection %s: %w", id, entity.ErrNotFound)
}

func (s *stubInspector) ModelLoaded() bool { return true }

func sampleResult() *entity.InspectionResult {
	return &entity.InspectionResult{
		ID:          "id-1",
		Grade:       entity.GradeA,
		DamageScore: 1.5,
		Damages: []entity.Damage{
			{Type: "scratch", Location: "front - bbox: [1, 2, 3, 4]", Severity: entity.SeverityMinor},
		},
		Report: entity.Report{
			ScreenCondition:   "screen: 1 defect(s) detected",
			BackCondition:     "back: healthy",
			FrameCondition:    "frame: healthy",
			Summary:           "1 defect(s) detected, grade: A",
			OverallAssessment: "Very good condition. Only minor signs of use.",
		},
		BatteryHealth: 90,
		Visualized:    map[entity.View][]byte{entity.ViewFront: []byte("jpeg")},
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["detail"]
}

func TestHealth(t *testing.T) {
	r := NewRouter(&stubInspector{}, RouterOptions{}, nil)
	w := doRequest(r, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok","model_loaded":true}`, w.Body.String())
}

func TestInspect_Success(t *testing.T) {
	stub := &stubInspector{result: sampleResult()}
	r := NewRouter(stub, RouterOptions{}, nil)

	front := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("front-bytes"))
	back := base64.StdEncoding.EncodeToString([]byte("back-bytes"))
	body := fmt.Sprintf(`{"images":{"front":%q,"back":%q},"battery_health":90}`, front, back)

	w := doRequest(r, http.MethodPost, "/api/inspect", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Equal(t, []byte("front-bytes"), stub.request.Images["front"])
	require.Equal(t, []byte("back-bytes"), stub.request.Images["back"])
	require.Equal(t, 90, stub.request.BatteryHealth)

	var resp InspectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "id-1", resp.ID)
	assert.Equal(t, entity.GradeA, resp.Grade)
	assert.Equal(t, 1.5, resp.DamageScore)
	assert.Equal(t, "back: healthy", resp.BackCondition)
	assert.Equal(t, entity.SeverityMinor, resp.Damages[0].Severity)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("jpeg")), resp.VisualizedImages["front"])
}

func TestInspect_BadRequests(t *testing.T) {
	r := NewRouter(&stubInspector{result: sampleResult()}, RouterOptions{}, nil)

	w := doRequest(r, http.MethodPost, "/api/inspect", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/inspect", `{"images":{"front":"!!!not base64!!!"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, detail(t, w), "front")
}

func TestInspect_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", fmt.Errorf("%w: no front or back image provided", entity.ErrInvalidInput), http.StatusBadRequest},
		{"decode", fmt.Errorf("back image: %w", entity.ErrDecode), http.StatusBadRequest},
		{"adapter", &entity.AdapterError{View: entity.ViewFront, Err: errors.New("model crashed")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(&stubInspector{err: tt.err}, RouterOptions{}, nil)
			w := doRequest(r, http.MethodPost, "/api/inspect", `{"images":{"side":"AAAA"}}`)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestInspect_ErrorDetailTruncated(t *testing.T) {
	long := strings.Repeat("x", 500)
	r := NewRouter(&stubInspector{err: errors.New(long)}, RouterOptions{}, nil)

	w := doRequest(r, http.MethodPost, "/api/inspect", `{"images":{"front":"AAAA"}}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "inspection failed: "+strings.Repeat("x", 200), detail(t, w))
}

func TestInspect_UnknownViewPayloadIgnored(t *testing.T) {
	stub := &stubInspector{result: sampleResult()}
	r := NewRouter(stub, RouterOptions{}, nil)

	front := base64.StdEncoding.EncodeToString([]byte("front-bytes"))
	body := fmt.Sprintf(`{"images":{"front":%q,"side":"!!!","Front":"!!!"}}`, front)

	w := doRequest(r, http.MethodPost, "/api/inspect", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, []byte("front-bytes"), stub.request.Images["front"])
	require.Contains(t, stub.request.Images, "side")
	require.Nil(t, stub.request.Images["side"])
}

func TestInspect_RejectedDetailTruncated(t *testing.T) {
	err := fmt.Errorf("back image: %w: %s", entity.ErrDecode, strings.Repeat("y", 500))
	r := NewRouter(&stubInspector{err: err}, RouterOptions{}, nil)

	w := doRequest(r, http.MethodPost, "/api/inspect", `{"images":{"back":"AAAA"}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, []rune(detail(t, w)), maxErrorDetail)
	require.True(t, strings.HasPrefix(detail(t, w), "back image: "))
}

func TestInspections_ListAndGet(t *testing.T) {
	stub := &stubInspector{result: sampleResult(), history: []*entity.InspectionResult{sampleResult()}}
	r := NewRouter(stub, RouterOptions{HistoryLimit: 20}, nil)

	w := doRequest(r, http.MethodGet, "/api/inspections?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 5, stub.limit)

	var list []InspectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = doRequest(r, http.MethodGet, "/api/inspections?limit=500", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 20, stub.limit)

	w = doRequest(r, http.MethodGet, "/api/inspections?limit=abc", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/inspections/id-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/api/inspections/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORS(t *testing.T) {
	r := NewRouter(&stubInspector{}, RouterOptions{AllowOrigins: []string{"*"}}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/inspect", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	r = NewRouter(&stubInspector{}, RouterOptions{AllowOrigins: []string{"http://shop.local"}}, nil)
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.local")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBodyLimit(t *testing.T) {
	r := NewRouter(&stubInspector{result: sampleResult()}, RouterOptions{MaxUploadSize: 16}, nil)
	body := `{"images":{"front":"` + strings.Repeat("A", 64) + `"}}`

	w := doRequest(r, http.MethodPost, "/api/inspect", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecodeImage(t *testing.T) {
	data, err := decodeImage("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	data, err = decodeImage("aGVsbG8")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	_, err = decodeImage("%%%")
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 200))
	require.Equal(t, "ab", truncate("abc", 2))
	require.Equal(t, "пр", truncate("привет", 2))
}

