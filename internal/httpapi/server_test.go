package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"educhain/internal/config"
	"educhain/internal/database"
	"educhain/internal/domain"
	"educhain/internal/repository"
	"educhain/internal/services"
	"educhain/pkg/payment"
)

type testEnv struct {
	handler http.Handler
	db      *gorm.DB
	cfg     *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Name: "EDUCHAIN API"},
		Database: config.DatabaseConfig{URL: "sqlite:///" + filepath.Join(t.TempDir(), "api.db")},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         600,
		},
	}

	db, err := database.Open(&cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	repo := repository.NewInquiryRepository(db)
	require.NoError(t, repo.CreateTable(context.Background()))

	srv := NewServer(
		services.NewInquiryService(repo, services.LogNotifier{}),
		services.NewDonationService(payment.PendingProvider{}),
		services.NewHealthService(db, cfg.App.Name),
	)
	return &testEnv{handler: NewHandler(cfg, srv), db: db, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) inquiries(t *testing.T) []domain.Inquiry {
	t.Helper()
	var rows []domain.Inquiry
	require.NoError(t, e.db.Order("id").Find(&rows).Error)
	return rows
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body MessageBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Message
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RootMessage, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestSubmitInquiryStoresRow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/submit_inquiry",
		`{"name":"Jane","email":"jane@x.com","type":"donor","message":"Hi"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Inquiry submitted successfully", decodeMessage(t, rec))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rows := env.inquiries(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane", rows[0].Name)
	assert.Equal(t, "jane@x.com", rows[0].Email)
	assert.Equal(t, "donor", rows[0].Type)
	assert.Equal(t, "Hi", rows[0].Message)
	assert.False(t, rows[0].Timestamp.IsZero())
}

func TestSubmitInquiryWithoutMessage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/submit_inquiry", `{"name":"Jane","email":"jane@x.com","type":"donor"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rows := env.inquiries(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Message)
}

func TestSubmitInquiryMissingFields(t *testing.T) {
	bodies := map[string]string{
		"no name":      `{"email":"jane@x.com","type":"donor"}`,
		"no email":     `{"name":"Jane","type":"donor"}`,
		"no type":      `{"name":"Jane","email":"jane@x.com"}`,
		"null type":    `{"name":"Jane","email":"jane@x.com","type":null}`,
		"blank name":   `{"name":"  ","email":"jane@x.com","type":"donor"}`,
		"empty":        `{}`,
		"only message": `{"message":"hello"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/submit_inquiry", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeMessage(t, rec), "Missing required fields (name, email, type)")
			assert.Equal(t, services.ErrNameBadRequest, rec.Header().Get("goa-error"))
			assert.Empty(t, env.inquiries(t))
		})
	}
}

func TestSubmitInquiryInvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{"", "not json", `["Jane"]`, `{"name": {"first": "Jane"}}`, `{"message": [1, 2]}`} {
		rec := env.do(t, http.MethodPost, "/submit_inquiry", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, "Invalid JSON payload", decodeMessage(t, rec))
	}
	assert.Empty(t, env.inquiries(t))
}

func TestSubmitInquiryStoresScalarsAsText(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/submit_inquiry", `{"name":"Jane","email":"jane@x.com","type":"donor","message":7}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rows := env.inquiries(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "7", rows[0].Message)
}

func TestSubmitInquiryDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	first := env.do(t, http.MethodPost, "/submit_inquiry", `{"name":"Jane","email":"jane@x.com","type":"donor"}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := env.do(t, http.MethodPost, "/submit_inquiry", `{"name":"Other","email":"jane@x.com","type":"youth","message":"again"}`)
	assert.Equal(t, http.StatusInternalServerError, second.Code)
	assert.True(t, strings.HasPrefix(decodeMessage(t, second), "Server error during submission: "))
	assert.Equal(t, services.ErrNameConflict, second.Header().Get("goa-error"))

	rows := env.inquiries(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "Jane", rows[0].Name)
	assert.Equal(t, "donor", rows[0].Type)
}

func TestSubmitInquiryStorageFailure(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Migrator().DropTable(&domain.Inquiry{}))

	rec := env.do(t, http.MethodPost, "/submit_inquiry", `{"name":"Jane","email":"jane@x.com","type":"donor"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeMessage(t, rec), "Server error during submission: failed to save inquiry")
	assert.Equal(t, services.ErrNameStorage, rec.Header().Get("goa-error"))
}

func TestSubmitInquiryWrongMethod(t *testing.T) {
	env := newTestEnv(t)

	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := env.do(t, m, "/submit_inquiry", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, m)
		assert.Equal(t, "Method not allowed", decodeMessage(t, rec))
	}
}

func TestInitiateDonation(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{"", `{"amount": 500, "phone": "254700000000"}`, "garbage"} {
		rec := env.do(t, http.MethodPost, "/initiate_donation", body)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Donation gateway integration pending. Thank you!", decodeMessage(t, rec))
	}

	rec := env.do(t, http.MethodGet, "/initiate_donation", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body services.HealthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "EDUCHAIN API", body.Service)

	require.NoError(t, database.Close(env.db))
	rec = env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/submit_inquiry", `{"name":"Jane","email":"jane@x.com","type":"donor"}`)

	rec := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `inquiry_submissions_total{type="donor"}`)
}

func TestMetricsLabelsStayBounded(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 5; i++ {
		body := fmt.Sprintf(`{"name":"N%d","email":"n%d@x.com","type":"sponsor-%d"}`, i, i, i)
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/submit_inquiry", body).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, fmt.Sprintf("/scan-%d", i), "").Code)
	}

	rows := env.inquiries(t)
	require.Len(t, rows, 5)
	assert.Equal(t, "sponsor-0", rows[0].Type)

	out := env.do(t, http.MethodGet, "/metrics", "").Body.String()
	assert.NotContains(t, out, "sponsor-")
	assert.NotContains(t, out, "/scan-")
	assert.Contains(t, out, `inquiry_submissions_total{type="other"}`)
	assert.Contains(t, out, `endpoint="unmatched"`)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/submit_inquiry", nil)
	req.Header.Set("Origin", "https://educhain.example")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://educhain.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))

	env.cfg.CORS.AllowedOrigins = []string{"https://educhain.example"}
	restricted := NewHandler(env.cfg, NewServer(nil, nil, nil))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	restricted.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
