package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/cardwatch/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars(t)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverSQLite)
				convey.So(cfg.ReconcilePolicy, convey.ShouldEqual, "strict")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars(t)
			t.Setenv("CARDWATCH_ADDR", ":8080")
			t.Setenv("CARDWATCH_STORE_DRIVER", "memory")
			t.Setenv("CARDWATCH_RECONCILE_POLICY", "printable")
			t.Setenv("CARDWATCH_MAX_RANKING_LIMIT", "50")
			t.Setenv("CARDWATCH_RANKING_CONCURRENCY", "3")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverMemory)
				convey.So(cfg.ReconcilePolicy, convey.ShouldEqual, "printable")
				convey.So(cfg.MaxRankingLimit, convey.ShouldEqual, 50)
				convey.So(cfg.RankingConcurrency, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When a YAML file is given", func() {
			clearConfigEnvVars(t)
			path := filepath.Join(t.TempDir(), "cardwatch.yaml")
			body := "addr: \":7070\"\nstore_driver: memory\nfixture_path: league.yaml\nlog_format: json\n"
			convey.So(os.WriteFile(path, []byte(body), 0o600), convey.ShouldBeNil)
			t.Setenv("CARDWATCH_CONFIG", path)
			t.Setenv("CARDWATCH_ADDR", ":6060")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverMemory)
				convey.So(cfg.FixturePath, convey.ShouldEqual, "league.yaml")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When the file is missing", func() {
			clearConfigEnvVars(t)
			t.Setenv("CARDWATCH_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then it fails as a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the result is invalid", func() {
			clearConfigEnvVars(t)
			t.Setenv("CARDWATCH_RECONCILE_POLICY", "lenient")

			_, err := config.Load(ctx)

			convey.Convey("Then it fails validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CARDWATCH_CONFIG", "CARDWATCH_ADDR", "CARDWATCH_STORE_DRIVER", "CARDWATCH_SQLITE_PATH",
		"CARDWATCH_FIXTURE_PATH", "CARDWATCH_RECONCILE_POLICY", "CARDWATCH_MAX_RANKING_LIMIT",
		"CARDWATCH_RANKING_CONCURRENCY", "CARDWATCH_LOG_LEVEL", "CARDWATCH_LOG_FORMAT",
	} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}
