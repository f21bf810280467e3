// Package main provides the long-running service:
// - POST /run executes the batch pipeline over submitted lines
// - GET /report renders the current report from the stores
// - GET /ws streams run progress events over WebSocket
// - /health, /status, /metrics for operations
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"sales-analytics/internal/catalog"
	"sales-analytics/internal/domain"
	"sales-analytics/internal/observability"
	"sales-analytics/internal/pipeline"
	"sales-analytics/internal/reporting"
	"sales-analytics/internal/storage"
	chstore "sales-analytics/internal/storage/clickhouse"
	"sales-analytics/internal/storage/memory"
	"sales-analytics/internal/storage/migrations"
	pgstore "sales-analytics/internal/storage/postgres"
)

// Server holds the stores and collaborators shared across requests.
type Server struct {
	txStore    storage.TransactionStore
	rejStore   storage.RejectionStore
	enrStore   storage.EnrichedStore
	runStore   storage.RunStore
	dailyStore storage.DailyRevenueStore
	aggStore   storage.RevenueAggregateStore

	catalogURL string
	backend    string
	metrics    *observability.Metrics
	logger     *log.Logger
	startedAt  time.Time

	// runMu serializes pipeline executions; the stores accumulate
	// across runs but one batch runs at a time.
	runMu sync.Mutex

	// WebSocket clients receiving progress events.
	wsMu      sync.Mutex
	wsClients map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "HTTP listen address")
	catalogURL := flag.String("catalog-url", os.Getenv("CATALOG_URL"), "Product catalog base URL (empty disables enrichment)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (empty uses memory stores)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (empty skips analytical sinks)")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)
	ctx := context.Background()

	s := &Server{
		txStore:    memory.NewTransactionStore(),
		rejStore:   memory.NewRejectionStore(),
		enrStore:   memory.NewEnrichedStore(),
		runStore:   memory.NewRunStore(),
		catalogURL: *catalogURL,
		backend:    "memory",
		metrics:    observability.NewMetrics(""),
		logger:     logger,
		startedAt:  time.Now().UTC(),
		wsClients:  make(map[*websocket.Conn]struct{}),
		upgrader:   websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}

	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("postgres migrations: %v", err)
		}
		s.txStore = pgstore.NewTransactionStore(pool)
		s.rejStore = pgstore.NewRejectionStore(pool)
		s.enrStore = pgstore.NewEnrichedStore(pool)
		s.runStore = pgstore.NewRunStore(pool)
		s.backend = "postgres"
		logger.Println("Using PostgreSQL storage")
	}
	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("clickhouse: %v", err)
		}
		defer conn.Close()
		s.dailyStore = chstore.NewDailyRevenueStore(conn)
		s.aggStore = chstore.NewRevenueAggregateStore(conn)
		logger.Println("Using ClickHouse analytical sinks")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/run", s.handleRun)
	mux.HandleFunc("/report", s.handleReport)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Listening on %s", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runStore.GetAll(r.Context())
	if err != nil {
		s.metrics.DBQueryErrors.WithLabelValues(s.backend).Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := map[string]any{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"total_runs":     len(runs),
	}
	if len(runs) > 0 {
		last := runs[len(runs)-1]
		status["last_run"] = map[string]any{
			"run_id":         last.RunID,
			"status":         last.Status,
			"started_at":     last.StartedAt,
			"accepted":       last.Accepted,
			"rejected":       last.Rejected,
			"enriched":       last.Enriched,
			"total_revenue":  last.TotalRevenue.StringFixed(2),
			"filter_applied": last.FilterApplied,
		}
	}
	writeJSON(w, http.StatusOK, status)
}

// runRequest is the POST /run payload.
type runRequest struct {
	Lines     []string `json:"lines"`
	Region    string   `json:"region,omitempty"`
	MinAmount string   `json:"min_amount,omitempty"`
	MaxAmount string   `json:"max_amount,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}
	filter, err := buildFilter(req.Region, req.MinAmount, req.MaxAmount)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	p := pipeline.New(s.txStore, s.rejStore, s.enrStore, s.runStore).
		WithFilter(filter).
		WithMetrics(s.metrics).
		WithProgress(s.broadcast)
	if s.dailyStore != nil {
		p = p.WithAnalyticsStores(s.dailyStore, s.aggStore)
	}
	if s.catalogURL != "" {
		p = p.WithFetcher(catalog.NewHTTPClient(s.catalogURL))
	}

	res, err := p.Run(r.Context(), req.Lines)
	if err != nil {
		s.metrics.DBQueryErrors.WithLabelValues(s.backend).Inc()
		s.logger.Printf("run failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Printf("run %s: accepted=%d rejected=%d", res.RunID, len(res.Accepted), len(res.Rejections))

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":            res.RunID,
		"empty_input":       res.EmptyInput,
		"accepted":          len(res.Accepted),
		"rejected":          len(res.Rejections),
		"filtered_out":      res.FilteredOut,
		"catalog_available": res.CatalogAvailable,
		"catalog_size":      res.CatalogSize,
		"total_revenue":     res.Snapshot.TotalRevenue.StringFixed(2),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := reporting.NewGenerator(s.txStore, s.enrStore, s.rejStore).Generate(r.Context())
	if err != nil {
		s.metrics.DBQueryErrors.WithLabelValues(s.backend).Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.metrics.ReportsGenerated.Inc()

	switch r.URL.Query().Get("format") {
	case "", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, reporting.RenderText(report))
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, reporting.RenderMarkdown(report))
	default:
		http.Error(w, "unknown format, want text or markdown", http.StatusBadRequest)
	}
}

// handleWS upgrades the connection and registers it for progress
// events until the client disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade: %v", err)
		return
	}

	s.wsMu.Lock()
	s.wsClients[conn] = struct{}{}
	s.wsMu.Unlock()
	s.logger.Printf("websocket client connected (%d total)", s.clientCount())

	// Drain reads so close frames are processed; events flow one way.
	go func() {
		defer s.dropClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcast sends one progress event to every connected client.
func (s *Server) broadcast(e pipeline.ProgressEvent) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	for conn := range s.wsClients {
		if err := conn.WriteJSON(e); err != nil {
			conn.Close()
			delete(s.wsClients, conn)
		}
	}
}

func (s *Server) dropClient(conn *websocket.Conn) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	if _, ok := s.wsClients[conn]; ok {
		conn.Close()
		delete(s.wsClients, conn)
	}
}

func (s *Server) clientCount() int {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	return len(s.wsClients)
}

func buildFilter(region, minAmount, maxAmount string) (domain.FilterConfig, error) {
	f := domain.FilterConfig{Region: region}
	if minAmount != "" {
		d, err := decimal.NewFromString(minAmount)
		if err != nil {
			return f, fmt.Errorf("parse min amount %q: %w", minAmount, err)
		}
		f.MinAmount = &d
	}
	if maxAmount != "" {
		d, err := decimal.NewFromString(maxAmount)
		if err != nil {
			return f, fmt.Errorf("parse max amount %q: %w", maxAmount, err)
		}
		f.MaxAmount = &d
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
