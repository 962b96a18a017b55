package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/analysis"
	"github.com/crestline-research/finmap/internal/config"
	"github.com/crestline-research/finmap/internal/ingest"
	"github.com/crestline-research/finmap/internal/mapper"
	"github.com/crestline-research/finmap/internal/model"
	"github.com/crestline-research/finmap/internal/registry"
	"github.com/crestline-research/finmap/internal/store"
	"github.com/crestline-research/finmap/internal/waterfall"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: "Serves the registry, the analyze pipeline, and stored runs over HTTP. " +
		"Single-process and read-mostly; shuts down gracefully on SIGINT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		api := &apiServer{engine: cfg.Engine, reg: reg, st: st}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(api),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "cmd: server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// apiServer carries the serve command's shared dependencies.
type apiServer struct {
	engine config.EngineConfig
	reg    *registry.Registry
	st     store.Store
}

// newRouter builds the chi router with CORS and request logging.
func newRouter(s *apiServer) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/targets", s.handleTargets)
		r.Get("/coverage", s.handleCoverage)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

// requestLogger tags every request with an id and logs method, path, status,
// and latency.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reg.Targets())
}

func (s *apiServer) handleCoverage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, computeRegistryCoverage(s.reg))
}

// analyzeRequest is the POST /v1/analyze body: pre-parsed statement rows.
// Rows without a statement are classified by label, matching what ingest does
// for unlabeled files.
type analyzeRequest struct {
	Company string         `json:"company"`
	Rows    []model.RawRow `json:"rows"`
}

type analyzeResponse struct {
	Company     string                   `json:"company"`
	Years       []string                 `json:"years"`
	Mapping     []model.Assignment       `json:"mapping"`
	Resolutions []model.ResolvedValue    `json:"resolutions"`
	ByProv      map[model.Provenance]int `json:"by_provenance"`
	Analysis    *analysis.Result         `json:"analysis"`
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "rows are required")
		return
	}
	for i := range req.Rows {
		if req.Rows[i].Statement == "" {
			req.Rows[i].Statement = ingest.ClassifyLabel(req.Rows[i].Label)
		}
		if !req.Rows[i].Statement.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("row %d: unknown statement %q", i, req.Rows[i].Statement))
			return
		}
	}

	ds := &model.Dataset{Company: req.Company, Rows: req.Rows}
	ds.RecomputeYears()

	m := mapper.New(s.engine, s.reg)
	mapping := m.Map(ds)
	table := waterfall.NewResolver(s.engine, s.reg, ds, mapping).ResolveAll()

	writeJSON(w, http.StatusOK, analyzeResponse{
		Company:     req.Company,
		Years:       table.Years,
		Mapping:     mapping.Assignments(),
		Resolutions: table.All(),
		ByProv:      table.CountByProvenance(),
		Analysis:    analysis.Analyze(ds, table),
	})
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{
		Company: r.URL.Query().Get("company"),
		Limit:   50,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var n int
		if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	runs, err := s.st.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []model.RunRecord{}
	}
	writeJSON(w, http.StatusOK, runs)
}

type runDetail struct {
	Run         *model.RunRecord         `json:"run"`
	Mappings    []model.StoredMapping    `json:"mappings"`
	Resolutions []model.StoredResolution `json:"resolutions"`
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.st.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		zap.L().Error("get run failed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}

	mappings, err := s.st.LoadMappings(r.Context(), id)
	if err != nil {
		zap.L().Error("load mappings failed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load mappings failed")
		return
	}
	resolutions, err := s.st.LoadResolutions(r.Context(), id)
	if err != nil {
		zap.L().Error("load resolutions failed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load resolutions failed")
		return
	}

	writeJSON(w, http.StatusOK, runDetail{Run: run, Mappings: mappings, Resolutions: resolutions})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
