// Package server exposes the gateway over a JSON HTTP API.
//
// Information Hiding:
// - Route table and middleware hidden behind New
// - Request decoding and localized error mapping encapsulated
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/richinex/sociomind/gateway"
	"github.com/richinex/sociomind/model"
)

// Service is the gateway surface the API serves.
type Service interface {
	Mode() gateway.Mode
	GenerateQuiz(ctx context.Context, req model.ContentRequest) (model.QuizBatch, error)
	GenerateCustomQuestion(ctx context.Context, req model.ContentRequest) (model.CustomQuestion, error)
	ExplainConcept(ctx context.Context, req model.ContentRequest) (string, error)
	DefineTerm(ctx context.Context, req model.ContentRequest) (string, error)
	GenerateCaseStudy(ctx context.Context, req model.ContentRequest) (model.CaseStudy, error)
	AnalyzeSocialData(ctx context.Context, req model.ContentRequest) (model.AnalysisResult, error)
	GenerateIntroNarration(ctx context.Context, req model.ContentRequest) (model.Narration, error)
}

var _ Service = (*gateway.Gateway)(nil)

// New builds the API router.
func New(svc Service, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{svc: svc, logger: logger.Named("http")}

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(h.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/quiz", h.quiz).Methods("POST", "OPTIONS")
	api.HandleFunc("/custom-question", h.customQuestion).Methods("POST", "OPTIONS")
	api.HandleFunc("/explain", h.explain).Methods("POST", "OPTIONS")
	api.HandleFunc("/define", h.define).Methods("POST", "OPTIONS")
	api.HandleFunc("/case-study", h.caseStudy).Methods("POST", "OPTIONS")
	api.HandleFunc("/analysis", h.analysis).Methods("POST", "OPTIONS")
	api.HandleFunc("/narration", h.narration).Methods("GET", "OPTIONS")
	api.HandleFunc("/mode", h.mode).Methods("GET", "OPTIONS")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	return r
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
