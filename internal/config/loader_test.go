package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/sugarsignal/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"SUGAR_CONFIG", "SUGAR_ENV_FILE", "SUGAR_ADDR", "SUGAR_MOUNT_PATH", "SUGAR_MODEL_PATH",
	"SUGAR_MODEL_CHECKSUM", "SUGAR_CACHE_SIZE", "SUGAR_LOG_LEVEL", "SUGAR_LOG_FILE",
	"SUGAR_S3_REGION", "SUGAR_S3_ENDPOINT", "SUGAR_S3_ACCESS_KEY", "SUGAR_S3_SECRET_KEY",
	"SUGAR_METRICS_NAMESPACE", "SUGAR_METRICS_SUBSYSTEM",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeTemp(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.MountPath, convey.ShouldEqual, "/predict")
				convey.So(cfg.CacheSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SUGAR_ADDR", ":8080")
			_ = os.Setenv("SUGAR_MOUNT_PATH", "/v1/predict")
			_ = os.Setenv("SUGAR_CACHE_SIZE", "0")
			_ = os.Setenv("SUGAR_S3_ACCESS_KEY", "AKIA")
			_ = os.Setenv("SUGAR_S3_ENDPOINT", "http://minio:9000")
			_ = os.Setenv("SUGAR_METRICS_NAMESPACE", "diabetes")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MountPath, convey.ShouldEqual, "/v1/predict")
				convey.So(cfg.CacheSize, convey.ShouldEqual, 0)
				convey.So(cfg.S3.AccessKey, convey.ShouldEqual, "AKIA")
				convey.So(cfg.S3.Endpoint, convey.ShouldEqual, "http://minio:9000")
				convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "diabetes")
				convey.So(cfg.Metrics.Subsystem, convey.ShouldEqual, "inference")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := writeTemp(t, "config.yaml", `
addr: ":9090"
model_path: "s3://models/diabetes.json"
model_checksum: "abc"
cache_size: 64
s3:
  region: eu-west-1
metrics:
  latency_buckets: [1, 5, 25]
  const_labels:
    env: staging
`)
			_ = os.Setenv("SUGAR_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ModelPath, convey.ShouldEqual, "s3://models/diabetes.json")
				convey.So(cfg.ModelChecksum, convey.ShouldEqual, "abc")
				convey.So(cfg.CacheSize, convey.ShouldEqual, 64)
				convey.So(cfg.S3.Region, convey.ShouldEqual, "eu-west-1")
				convey.So(cfg.MountPath, convey.ShouldEqual, "/predict")
				convey.So(cfg.Metrics.LatencyBuckets, convey.ShouldResemble, []float64{1, 5, 25})
				convey.So(cfg.Metrics.ConstLabels, convey.ShouldResemble, map[string]string{"env": "staging"})
				convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "sugarsignal")
			})

			convey.Convey("And environment variables should override file values", func() {
				_ = os.Setenv("SUGAR_ADDR", ":7070")
				_ = os.Setenv("SUGAR_S3_REGION", "us-east-1")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.S3.Region, convey.ShouldEqual, "us-east-1")
				convey.So(cfg.CacheSize, convey.ShouldEqual, 64)
			})
		})

		convey.Convey("When loading config with a dotenv file", func() {
			path := writeTemp(t, ".env", "SUGAR_LOG_LEVEL=debug\nSUGAR_ADDR=:6060\n")
			_ = os.Setenv("SUGAR_ENV_FILE", path)
			_ = os.Setenv("SUGAR_ADDR", ":5050")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fill unset variables only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Addr, convey.ShouldEqual, ":5050")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("SUGAR_CONFIG", writeTemp(t, "bad.yaml", "addr: [unclosed"))

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When loading config with non-existent files", func() {
			_ = os.Setenv("SUGAR_CONFIG", "/non/existent/file.yaml")
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)

			_ = os.Unsetenv("SUGAR_CONFIG")
			_ = os.Setenv("SUGAR_ENV_FILE", "/non/existent/.env")
			_, err = config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SUGAR_CACHE_SIZE", "lots")
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When loading config that fails validation", func() {
			_ = os.Setenv("SUGAR_MOUNT_PATH", "predict")
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
