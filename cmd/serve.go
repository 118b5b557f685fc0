package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-geo/lulc-cli/internal/render"
	"github.com/meridian-geo/lulc-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored runs and their charts over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			runs, listErr := st.ListRuns(req.Context(), store.RunFilter{})
			if listErr != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": listErr.Error()})
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, getErr := st.GetRun(req.Context(), chi.URLParam(req, "id"))
			if getErr != nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		r.Get("/runs/{id}/chart", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			records, listErr := st.ListAreaRecords(req.Context(), id)
			if listErr != nil || len(records) == 0 {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no area records for run"})
				return
			}
			bar, chartErr := render.AreaChart(records, reg.Catalog, "Land cover area by class")
			if chartErr != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": chartErr.Error()})
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if renderErr := render.WriteChartHTML(w, bar, reg.Catalog); renderErr != nil {
				zap.L().Error("serve: render chart", zap.String("run_id", id), zap.Error(renderErr))
			}
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			_ = srv.Close()
		}()

		zap.L().Info("serve: listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}
		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
