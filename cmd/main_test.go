package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	app "github.com/okian/formcheck/internal/app"
	"github.com/okian/formcheck/internal/config"
	"github.com/okian/formcheck/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const overrideCatalog = `
skills:
  - id: l_sit
    name: L-Sit
    family: l_sit
    checks:
      - name: Hip Angle
        points: [LEFT_SHOULDER, LEFT_HIP, LEFT_KNEE]
        min: 80
        max: 100
`

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("FORMCHECK_ADDR", ":8080")
			_ = os.Setenv("FORMCHECK_QUEUE_SIZE", "500")
			_ = os.Setenv("FORMCHECK_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("FORMCHECK_ADDR")
				_ = os.Unsetenv("FORMCHECK_QUEUE_SIZE")
				_ = os.Unsetenv("FORMCHECK_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the address is blank", func() {
			_ = os.Setenv("FORMCHECK_ADDR", " ")
			defer func() { _ = os.Unsetenv("FORMCHECK_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given default configuration without an API key", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("When the service is built", func() {
			svc, closeDeps, err := buildService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			defer closeDeps()

			convey.Convey("Then it should use the embedded catalog", func() {
				convey.So(len(svc.Skills()), convey.ShouldEqual, 14)
				convey.So(svc.GetStats()["tolerance"], convey.ShouldEqual, cfg.DecayTolerance)
			})
		})

		convey.Convey("When a catalog override is configured", func() {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			convey.So(os.WriteFile(path, []byte(overrideCatalog), 0o600), convey.ShouldBeNil)
			cfg.CatalogPath = path

			svc, closeDeps, err := buildService(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			defer closeDeps()

			convey.Convey("Then the override should replace the catalog", func() {
				convey.So(len(svc.Skills()), convey.ShouldEqual, 1)
				_, ok := svc.Skill("l_sit")
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the catalog override is missing", func() {
			cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
			_, _, err := buildService(ctx, cfg, logger.Get())

			convey.Convey("Then building should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "load catalog")
			})
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a handler for a started service", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.WorkerCount = 1
		svc, closeDeps, err := buildService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer closeDeps()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop(ctx)

		h := newHandler(ctx, cfg, svc)

		convey.Convey("Then API and docs routes should be served", func() {
			for _, path := range []string{"/skills", "/openapi.yaml", "/api-docs", "/healthz", "/stats", "/athletes/ada/progress"} {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then configured origins should pass preflight", func() {
			req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
			req.Header.Set("Origin", cfg.AllowedOrigins[0])
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusNoContent)
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, cfg.AllowedOrigins[0])
		})
	})
}

func TestServiceMetricsUpdater(t *testing.T) {
	convey.Convey("Given a service", t, func() {
		svc := app.New()

		convey.Convey("When metrics are updated", func() {
			convey.Convey("Then it should not panic", func() {
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When the updater's context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			done := make(chan struct{})
			go func() {
				startServiceMetricsUpdater(ctx, svc)
				close(done)
			}()

			convey.Convey("Then the updater should return", func() {
				returned := false
				select {
				case <-done:
					returned = true
				case <-time.After(time.Second):
				}
				convey.So(returned, convey.ShouldBeTrue)
			})
		})
	})
}
