//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/hieunguyen/vocabdeck/internal/adapter/pdfstore"
	"github.com/hieunguyen/vocabdeck/internal/adapter/postgres"
	credentialrepo "github.com/hieunguyen/vocabdeck/internal/adapter/postgres/credential"
	deckrepo "github.com/hieunguyen/vocabdeck/internal/adapter/postgres/deck"
	highlightrepo "github.com/hieunguyen/vocabdeck/internal/adapter/postgres/highlight"
	settingrepo "github.com/hieunguyen/vocabdeck/internal/adapter/postgres/setting"
	"github.com/hieunguyen/vocabdeck/internal/adapter/postgres/testhelper"
	wordrepo "github.com/hieunguyen/vocabdeck/internal/adapter/postgres/word"
	"github.com/hieunguyen/vocabdeck/internal/adapter/provider/claude"
	"github.com/hieunguyen/vocabdeck/internal/auth"
	"github.com/hieunguyen/vocabdeck/internal/config"
	"github.com/hieunguyen/vocabdeck/internal/gate"
	decksvc "github.com/hieunguyen/vocabdeck/internal/service/deck"
	"github.com/hieunguyen/vocabdeck/internal/service/enrichment"
	highlightsvc "github.com/hieunguyen/vocabdeck/internal/service/highlight"
	"github.com/hieunguyen/vocabdeck/internal/service/keypool"
	"github.com/hieunguyen/vocabdeck/internal/transport/middleware"
	"github.com/hieunguyen/vocabdeck/internal/transport/rest"
)

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// testServer wraps the full-stack HTTP server for E2E tests.
type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper). The AI dispatch stack is
// wired with the real client; tests never hit the external API.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)

	credRepo := credentialrepo.New(pool)
	setRepo := settingrepo.New(pool)
	dRepo := deckrepo.New(pool)
	wRepo := wordrepo.New(pool)
	hRepo := highlightrepo.New(pool)

	store, err := pdfstore.New(t.TempDir())
	require.NoError(t, err)

	slotGate := gate.New(2)
	keyPool := keypool.NewService(logger, credRepo, setRepo, slotGate, 2)
	require.NoError(t, keyPool.Load(t.Context()))

	aiClient := claude.New("claude-3-5-haiku-latest", logger)
	registry := enrichment.NewRegistry()
	dispatcher := enrichment.NewDispatcher(logger, keyPool, slotGate, aiClient, registry, 45*time.Second)
	enrichmentService := enrichment.NewService(logger, dispatcher)

	deckService := decksvc.NewService(logger, dRepo, wRepo, txm)
	highlightService := highlightsvc.NewService(logger, hRepo, txm)

	jwtMgr := auth.NewJWTManager("test-secret-at-least-32-chars-long!!", "test-issuer", 15*time.Minute)

	mux := rest.NewRouter(rest.Handlers{
		Health: rest.NewHealthHandler(pool, "test-version"),
		AI:     rest.NewAIHandler(enrichmentService, keyPool, logger),
		Keys:   rest.NewKeysHandler(keyPool, logger),
		Decks:  rest.NewDeckHandler(deckService, logger),
		PDFs:   rest.NewPDFHandler(store, highlightService, logger),
	})

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.CORS(config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		}),
		middleware.Auth(jwtMgr),
	)(mux)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
	}
}

// doJSON sends a request with an optional JSON body and decodes the JSON
// response into out (when out is non-nil). It returns the status code.
func (ts *testServer) doJSON(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// doRaw sends a request with a raw body and returns status, response
// bytes, and the Content-Type header.
func (ts *testServer) doRaw(t *testing.T, method, path string, contentType string, body io.Reader) (int, []byte, string) {
	t.Helper()

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data, resp.Header.Get("Content-Type")
}
