package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// maxUploadBytes caps recognition uploads; nameplate photos are small.
const maxUploadBytes = 20 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recognition HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/v1/recognize", recognizeHandler(env))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go awaitShutdown(ctx, srv)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// recognizeHandler runs one uploaded photo through the waterfall. A dead
// client gets nothing; a live client whose recognition timed out gets a 504.
func recognizeHandler(e *env) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		image, err := readImage(req)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		result, err := e.recognize(req.Context(), image)
		if err != nil {
			if req.Context().Err() != nil {
				zap.L().Debug("client went away", zap.Error(err))
				return
			}
			status := http.StatusInternalServerError
			if errors.Is(err, context.DeadlineExceeded) {
				status = http.StatusGatewayTimeout
			}
			zap.L().Warn("recognition failed", zap.Error(err))
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// shutdownDrainTimeout bounds how long in-flight recognitions get to finish
// after a termination signal.
const shutdownDrainTimeout = 10 * time.Second

// awaitShutdown blocks until ctx is canceled, then drains the server on a
// fresh timeout; the signal context is already dead and would cut the drain
// to zero.
func awaitShutdown(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownDrainTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

// readImage accepts either a multipart upload under "image" or a JSON body
// {"image_b64": "..."}.
func readImage(req *http.Request) ([]byte, error) {
	ct := req.Header.Get("Content-Type")
	if len(ct) >= 19 && ct[:19] == "multipart/form-data" {
		if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, eris.Wrap(err, "parse multipart form")
		}
		f, _, err := req.FormFile("image")
		if err != nil {
			return nil, eris.Wrap(err, `missing "image" form file`)
		}
		defer f.Close() //nolint:errcheck
		return io.ReadAll(io.LimitReader(f, maxUploadBytes))
	}

	var body struct {
		ImageB64 string `json:"image_b64"`
	}
	if err := json.NewDecoder(io.LimitReader(req.Body, maxUploadBytes)).Decode(&body); err != nil {
		return nil, eris.Wrap(err, "decode request body")
	}
	if body.ImageB64 == "" {
		return nil, eris.New("image_b64 is required")
	}
	image, err := base64.StdEncoding.DecodeString(body.ImageB64)
	if err != nil {
		return nil, eris.Wrap(err, "decode image_b64")
	}
	return image, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
