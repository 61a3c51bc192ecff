// Package main provides the unified what-if service:
// - HTTP API over the scenario engine (baseline, price preview, presets, simulate)
// - WebSocket streaming of simulation progress
// - Session-token auth resolving shop domains against the shop store
// - Simulation archive (ClickHouse) and Prometheus metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"commerce-whatif-lab/internal/auth"
	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/engine"
	"commerce-whatif-lab/internal/observability"
	"commerce-whatif-lab/internal/storage"
	chstore "commerce-whatif-lab/internal/storage/clickhouse"
	"commerce-whatif-lab/internal/storage/memory"
	"commerce-whatif-lab/internal/storage/migrations"
	pgstore "commerce-whatif-lab/internal/storage/postgres"
)

// Server holds the components of the unified service.
type Server struct {
	engine          *engine.Engine
	resolver        *auth.Resolver
	devShop         *domain.Shop
	simulateTimeout time.Duration
	logger          *log.Logger
	upgrader        websocket.Upgrader

	// State
	mu             sync.Mutex
	started        time.Time
	simulations    int
	lastSimulation time.Time
}

// allStores holds all storage implementations.
type allStores struct {
	shopStore    storage.ShopStore
	historyStore storage.OrderHistoryStore
	runStore     storage.SimulationRunStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("SERVER_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	sessionSecret := flag.String("session-secret", os.Getenv("SESSION_SECRET"), "Shared secret for session token verification")
	devShop := flag.String("dev-shop", os.Getenv("DEV_SHOP"), "Shop domain to serve without auth (local development)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	migrate := flag.Bool("migrate", false, "Apply database migrations on startup")
	simulateTimeout := flag.Duration("simulate-timeout", 60*time.Second, "Per-request bound on one simulation")
	workers := flag.Int("workers", 0, "Sampler worker count (0 = GOMAXPROCS)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}
	if *sessionSecret == "" && *devShop == "" {
		logger.Fatal("--session-secret is required (use --dev-shop for local development without auth)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, *migrate)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	eng, err := engine.New(engine.Options{
		History: stores.historyStore,
		Runs:    stores.runStore,
		Workers: *workers,
	})
	if err != nil {
		logger.Fatalf("Failed to create engine: %v", err)
	}

	server := &Server{
		engine:          eng,
		simulateTimeout: *simulateTimeout,
		logger:          logger,
		started:         time.Now(),
		upgrader:        websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
	}

	if *sessionSecret != "" {
		resolver, err := auth.NewResolver(auth.ResolverOptions{
			Shops:  stores.shopStore,
			Secret: *sessionSecret,
		})
		if err != nil {
			logger.Fatalf("Failed to create session resolver: %v", err)
		}
		server.resolver = resolver
	}

	if *devShop != "" {
		shop, err := ensureDevShop(ctx, stores.shopStore, *devShop)
		if err != nil {
			logger.Fatalf("Failed to register dev shop: %v", err)
		}
		server.devShop = shop
		logger.Printf("Auth bypass enabled for dev shop %s (shop_id=%d)", shop.ShopDomain, shop.ShopID)
	}

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.routes(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory, migrate bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			shopStore:    memory.NewShopStore(),
			historyStore: memory.NewOrderHistoryStore(),
			runStore:     memory.NewSimulationRunStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
	}

	// ClickHouse
	var chConn *chstore.Conn
	if migrate {
		chConn, err = migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	} else {
		chConn, err = chstore.NewConn(ctx, clickhouseDSN)
	}
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	stores := &allStores{
		shopStore:    pgstore.NewShopStore(pool),
		historyStore: pgstore.NewOrderHistoryStore(pool),
		runStore:     chstore.NewSimulationRunStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// ensureDevShop looks up the dev shop and registers it when missing.
func ensureDevShop(ctx context.Context, shops storage.ShopStore, shopDomain string) (*domain.Shop, error) {
	shop, err := shops.GetByDomain(ctx, shopDomain)
	if err == nil {
		return shop, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	shop = &domain.Shop{ShopID: 1, ShopDomain: shopDomain, CreatedAt: time.Now().UTC()}
	if err := shops.Insert(ctx, shop); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return nil, err
	}
	return shops.GetByDomain(ctx, shopDomain)
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	mux.Handle("/what-if/baseline", s.instrument("baseline", s.authenticated(s.handleBaseline)))
	mux.Handle("/what-if/price-preview", s.instrument("price_preview", s.authenticated(s.handlePricePreview)))
	mux.Handle("/what-if/presets", s.instrument("presets", s.authenticated(s.handlePresets)))
	mux.Handle("/what-if/simulate", s.instrument("simulate", s.authenticated(s.handleSimulate)))
	mux.Handle("/what-if/simulate/stream", s.authenticated(s.handleSimulateStream))

	return mux
}

// authenticated resolves the shop for a request before invoking the handler.
func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, *domain.Shop)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, err := s.resolveShop(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		next(w, r, shop)
	}
}

// resolveShop extracts and verifies the session token. When a dev shop is
// configured and no token is supplied, the dev shop is served.
func (s *Server) resolveShop(r *http.Request) (*domain.Shop, error) {
	token := bearerToken(r)
	if token == "" {
		if s.devShop != nil {
			return s.devShop, nil
		}
		return nil, auth.ErrInvalidToken
	}
	if s.resolver == nil {
		return nil, auth.ErrInvalidToken
	}
	return s.resolver.ResolveToken(r.Context(), token)
}

// bearerToken pulls the session token from the Authorization header, falling
// back to the token query parameter for WebSocket clients.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// instrument records request duration and status for an endpoint.
func (s *Server) instrument(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		observability.DefaultMetrics.HTTPRequestDuration.
			WithLabelValues(endpoint, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// handleBaseline serves GET /what-if/baseline?days=N.
func (s *Server) handleBaseline(w http.ResponseWriter, r *http.Request, shop *domain.Shop) {
	days, err := queryInt(r, "days", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	b, err := s.engine.Baseline(r.Context(), shop.ShopID, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handlePricePreview serves GET /what-if/price-preview?multiplier=&elasticity=&days=.
func (s *Server) handlePricePreview(w http.ResponseWriter, r *http.Request, shop *domain.Shop) {
	multiplier, err := queryFloat(r, "multiplier", 1.0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	elasticity, err := queryFloat(r, "elasticity", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	days, err := queryInt(r, "days", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	preview, err := s.engine.PricePreview(r.Context(), shop.ShopID, multiplier, elasticity, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handlePresets serves GET /what-if/presets.
func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request, shop *domain.Shop) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"presets": s.engine.Presets(),
	})
}

// handleSimulate serves POST /what-if/simulate.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request, shop *domain.Shop) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &domain.ValidationError{Field: "body", Reason: fmt.Sprintf("invalid JSON: %v", err)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.simulateTimeout)
	defer cancel()

	result, err := s.engine.Simulate(ctx, shop.ShopID, req, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.recordSimulation()
	writeJSON(w, http.StatusOK, result)
}

// progressFrame is one WebSocket progress message.
type progressFrame struct {
	Type      string `json:"type"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// handleSimulateStream serves GET /what-if/simulate/stream over WebSocket.
// The first client message is the simulation request; the server streams
// progress frames per sampling chunk, then the final result frame.
func (s *Server) handleSimulateStream(w http.ResponseWriter, r *http.Request, shop *domain.Shop) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	observability.DefaultMetrics.WSStreamsActive.Inc()
	defer observability.DefaultMetrics.WSStreamsActive.Dec()

	var req domain.SimulationRequest
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	if err := conn.ReadJSON(&req); err != nil {
		s.writeStreamError(conn, &domain.ValidationError{Field: "request", Reason: fmt.Sprintf("invalid request frame: %v", err)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.simulateTimeout)
	defer cancel()

	// Progress callbacks arrive from the sampler; writes to the socket must
	// be serialized.
	var writeMu sync.Mutex
	progress := func(completed, total int) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(progressFrame{Type: "progress", Completed: completed, Total: total}); err != nil {
			cancel()
		}
	}

	result, err := s.engine.Simulate(ctx, shop.ShopID, req, progress)
	if err != nil {
		s.writeStreamError(conn, err)
		return
	}

	s.recordSimulation()

	writeMu.Lock()
	defer writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(map[string]interface{}{"type": "result", "result": result}); err != nil {
		s.logger.Printf("Failed to write result frame: %v", err)
		return
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// writeStreamError sends an error frame and closes the stream.
func (s *Server) writeStreamError(conn *websocket.Conn, err error) {
	code, message := classifyError(err)
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	conn.WriteJSON(map[string]interface{}{
		"type":    "error",
		"code":    code,
		"message": message,
	})
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, code))
}

func (s *Server) recordSimulation() {
	s.mu.Lock()
	s.simulations++
	s.lastSimulation = time.Now()
	s.mu.Unlock()
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status         string    `json:"status"`
	Uptime         string    `json:"uptime"`
	Simulations    int       `json:"simulations"`
	LastSimulation time.Time `json:"last_simulation,omitempty"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:         "running",
		Uptime:         time.Since(s.started).String(),
		Simulations:    s.simulations,
		LastSimulation: s.lastSimulation,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// classifyError maps an engine or auth error to a machine-readable code.
func classifyError(err error) (code, message string) {
	var ve *domain.ValidationError
	var cle *domain.ComputationLimitError
	var ide *domain.InsufficientDataError
	switch {
	case errors.As(err, &ve):
		return "validation_error", ve.Error()
	case errors.As(err, &cle):
		return "computation_limit", cle.Error()
	case errors.As(err, &ide):
		return "insufficient_data", ide.Error()
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return "unauthorized", err.Error()
	case errors.Is(err, storage.ErrNotFound):
		return "not_found", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout", "simulation exceeded the request time limit"
	default:
		return "internal", "internal server error"
	}
}

// writeError maps an error to an HTTP status and writes the JSON envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code, message := classifyError(err)

	status := http.StatusInternalServerError
	switch code {
	case "validation_error":
		status = http.StatusBadRequest
	case "computation_limit":
		status = http.StatusRequestEntityTooLarge
	case "insufficient_data":
		status = http.StatusUnprocessableEntity
	case "unauthorized":
		status = http.StatusUnauthorized
	case "not_found":
		status = http.StatusNotFound
	case "timeout":
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		s.logger.Printf("Request failed: %v", err)
	}

	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Reason: fmt.Sprintf("must be an integer, got %q", raw)}
	}
	return v, nil
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Reason: fmt.Sprintf("must be a number, got %q", raw)}
	}
	return v, nil
}

// envOr returns the environment value for key or def when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
