package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/callscape/callscape/pkg/cache"
	cserrors "github.com/callscape/callscape/pkg/errors"
	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string // listen address
	redis   string // Redis address for the shared cache (optional)
	mongo   string // MongoDB URI for the shared cache (optional)
	noCache bool   // disable caching
}

// newServeCmd creates the serve command that exposes the pipeline over HTTP.
//
// The cache backend defaults to the local file cache; --redis or --mongo
// switch to a shared backend so multiple instances reuse results.
func newServeCmd() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline as an HTTP API",
		Long: `Serve the pipeline as an HTTP API.

Endpoints:
  POST /api/v1/build   Run the pipeline on a JSON request body
  GET  /healthz        Liveness probe

The request body matches the pipeline options schema: analysis, optional
overrides, previous snapshot, trace events, limits, and layout settings.

Examples:
  callscape serve
  callscape serve --addr :9000 --redis localhost:6379
  callscape serve --mongo mongodb://localhost:27017`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "Redis address for the shared cache")
	cmd.Flags().StringVar(&opts.mongo, "mongo", "", "MongoDB URI for the shared cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// serveCache selects the cache backend from the serve flags.
func serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	switch {
	case opts.noCache:
		return cache.NewNullCache(), nil
	case opts.redis != "":
		return cache.NewRedisCache(ctx, opts.redis)
	case opts.mongo != "":
		return cache.NewMongoCache(ctx, opts.mongo, "callscape", "layouts")
	default:
		return newCache(false)
	}
}

// runServe starts the HTTP server and blocks until the context is cancelled.
func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	c, err := serveCache(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           newRouter(runner),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", opts.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newRouter builds the chi router for the API.
func newRouter(runner *pipeline.Runner) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/build", handleBuild(runner))
	})

	return r
}

// requestID assigns each request a UUID, echoed in the X-Request-Id header.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, req.WithContext(withRequestID(req.Context(), id)))
	})
}

// requestIDKey is the context key for the request ID.
const requestIDKey ctxKey = 1

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// buildResponse is the JSON body returned by the build endpoint.
type buildResponse struct {
	GraphHash string           `json:"graph_hash"`
	Mode      string           `json:"mode"`
	Strategy  string           `json:"strategy"`
	Warnings  []string         `json:"warnings,omitempty"`
	Cached    bool             `json:"cached"`
	Output    graph.Positioned `json:"output"`
}

// errorResponse is the JSON body returned on failure.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// handleBuild runs the pipeline on the posted options and returns the
// positioned output. Input defects map to 400, everything else to 500.
func handleBuild(runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var opts pipeline.Options
		if err := json.NewDecoder(req.Body).Decode(&opts); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode request: %v", err)})
			return
		}
		opts.Logger = loggerFromContext(req.Context()).With("request_id", requestIDFromContext(req.Context()))

		result, err := runner.Execute(req.Context(), opts)
		if err != nil {
			status := http.StatusInternalServerError
			if code := cserrors.GetCode(err); code != "" && code != cserrors.ErrCodeInternal {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, errorResponse{Error: cserrors.UserMessage(err), Code: string(cserrors.GetCode(err))})
			return
		}

		writeJSON(w, http.StatusOK, buildResponse{
			GraphHash: result.GraphHash,
			Mode:      string(result.Mode),
			Strategy:  string(result.Strategy),
			Warnings:  result.Warnings,
			Cached:    result.CacheInfo.GraphHit && result.CacheInfo.LayoutHit,
			Output:    result.Output,
		})
	}
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
