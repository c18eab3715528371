package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/sugarsignal/internal/adapters/artifact"
	"github.com/okian/sugarsignal/internal/config"
	"github.com/okian/sugarsignal/internal/domain/classifier"
	"github.com/okian/sugarsignal/pkg/logger"
	"github.com/okian/sugarsignal/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

const shippedModel = "../models/diabetes_model.json"

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := config.New(context.Background())
	cfg.ModelPath = shippedModel
	return cfg
}

func post(t *testing.T, url, body string) (int, map[string]any) {
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	return resp.StatusCode, m
}

func TestEndToEnd(t *testing.T) {
	convey.Convey("Given the service wired with the shipped model", t, func() {
		ctx := context.Background()
		cfg := testConfig()
		svc, err := newService(ctx, cfg, logger.Discard())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		ts := httptest.NewServer(newHandler(ctx, cfg, svc, logger.Discard()))
		defer ts.Close()

		convey.Convey("When posting the reference input", func() {
			code, body := post(t, ts.URL+"/predict", `{"Pregnancies":2,"Glucose":130,"BloodPressure":70,"SkinThickness":22,"Insulin":100,"BMI":28.5,"DiabetesPedigreeFunction":0.5,"Age":35}`)

			convey.Convey("Then the model output should be returned", func() {
				convey.So(code, convey.ShouldEqual, http.StatusOK)
				convey.So(body["prediction"], convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When posting a high risk input", func() {
			code, body := post(t, ts.URL+"/predict", `{"Pregnancies":6,"Glucose":190,"BloodPressure":70,"SkinThickness":35,"Insulin":0,"BMI":40,"DiabetesPedigreeFunction":1.2,"Age":50}`)
			convey.So(code, convey.ShouldEqual, http.StatusOK)
			convey.So(body["prediction"], convey.ShouldEqual, 1.0)
		})

		convey.Convey("When posting all zeros with Age 1", func() {
			code, body := post(t, ts.URL+"/predict", `{"Pregnancies":0,"Glucose":0,"BloodPressure":0,"SkinThickness":0,"Insulin":0,"BMI":0,"DiabetesPedigreeFunction":0,"Age":1}`)
			convey.So(code, convey.ShouldEqual, http.StatusOK)
			convey.So(body["prediction"], convey.ShouldEqual, 0.0)
		})

		convey.Convey("When Age is missing", func() {
			code, body := post(t, ts.URL+"/predict", `{"Pregnancies":2,"Glucose":130,"BloodPressure":70,"SkinThickness":22,"Insulin":100,"BMI":28.5,"DiabetesPedigreeFunction":0.5}`)
			convey.So(code, convey.ShouldEqual, http.StatusUnprocessableEntity)
			convey.So(body["code"], convey.ShouldEqual, "validation_error")
			convey.So(svc.GetStats().Predictions, convey.ShouldEqual, 0)
		})

		convey.Convey("When reading the docs and model info", func() {
			for _, path := range []string{"/", "/healthz", "/model", "/stats", "/metrics", "/openapi.yaml", "/api-docs"} {
				resp, err := http.Get(ts.URL + path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(resp.Header.Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			}
		})
	})

	convey.Convey("Given a custom mount path", t, func() {
		ctx := context.Background()
		cfg := testConfig()
		cfg.MountPath = "/v1/diabetes"
		svc, err := newService(ctx, cfg, logger.Discard())
		convey.So(err, convey.ShouldBeNil)

		ts := httptest.NewServer(newHandler(ctx, cfg, svc, logger.Discard()))
		defer ts.Close()

		code, _ := post(t, ts.URL+"/v1/diabetes", `{"Pregnancies":0,"Glucose":0,"BloodPressure":0,"SkinThickness":0,"Insulin":0,"BMI":0,"DiabetesPedigreeFunction":0,"Age":1}`)
		convey.So(code, convey.ShouldEqual, http.StatusOK)
	})
}

func TestModelLoadFailures(t *testing.T) {
	convey.Convey("Given broken model settings", t, func() {
		ctx := context.Background()

		convey.Convey("When the model file does not exist", func() {
			cfg := testConfig()
			cfg.ModelPath = filepath.Join(t.TempDir(), "missing.json")
			_, err := newService(ctx, cfg, logger.Discard())
			convey.So(errors.Is(err, artifact.ErrFetch), convey.ShouldBeTrue)
		})

		convey.Convey("When the checksum does not match", func() {
			cfg := testConfig()
			cfg.ModelChecksum = strings.Repeat("f", 64)
			_, err := newService(ctx, cfg, logger.Discard())
			convey.So(errors.Is(err, artifact.ErrChecksumMismatch), convey.ShouldBeTrue)
		})

		convey.Convey("When the artifact is not a model", func() {
			cfg := testConfig()
			cfg.ModelPath = filepath.Join(t.TempDir(), "model.json")
			convey.So(os.WriteFile(cfg.ModelPath, []byte(`{"kind":"svm"}`), 0o600), convey.ShouldBeNil)
			_, err := newService(ctx, cfg, logger.Discard())
			convey.So(errors.Is(err, classifier.ErrUnknownKind), convey.ShouldBeTrue)
			convey.So(errors.Is(err, classifier.ErrInvalidArtifact), convey.ShouldBeTrue)
		})

		convey.Convey("When the uri scheme is unsupported", func() {
			cfg := testConfig()
			cfg.ModelPath = "ftp://host/model.json"
			_, err := newService(ctx, cfg, logger.Discard())
			convey.So(errors.Is(err, artifact.ErrInvalidURI), convey.ShouldBeTrue)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)

		svc, err := newService(context.Background(), testConfig(), logger.Discard())
		convey.So(err, convey.ShouldBeNil)
		convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
	})
}

func TestConfigureMetrics(t *testing.T) {
	convey.Convey("Given metrics naming settings", t, func() {
		ctx := context.Background()
		convey.Reset(func() { convey.So(configureMetrics(testConfig()), convey.ShouldBeNil) })

		convey.Convey("When they are valid", func() {
			cfg := testConfig()
			cfg.Metrics.Namespace = "diabetes"
			cfg.Metrics.ConstLabels = map[string]string{"env": "test"}
			convey.So(configureMetrics(cfg), convey.ShouldBeNil)

			svc, err := newService(ctx, cfg, logger.Discard())
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()

			ts := httptest.NewServer(newHandler(ctx, cfg, svc, logger.Discard()))
			defer ts.Close()

			convey.Convey("Then /metrics should expose the renamed series", func() {
				resp, err := http.Get(ts.URL + "/metrics")
				convey.So(err, convey.ShouldBeNil)
				defer resp.Body.Close()
				raw, _ := io.ReadAll(resp.Body)
				convey.So(string(raw), convey.ShouldContainSubstring, `diabetes_inference_model_loaded{env="test"} 1`)
				convey.So(string(raw), convey.ShouldNotContainSubstring, "sugarsignal_inference_")
			})
		})

		convey.Convey("When a constant label clashes with a metric label", func() {
			cfg := testConfig()
			cfg.Metrics.ConstLabels = map[string]string{"endpoint": "x"}
			convey.So(errors.Is(configureMetrics(cfg), metrics.ErrInvalidOption), convey.ShouldBeTrue)
		})
	})
}
