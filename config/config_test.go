package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/hiremind/backend/config"
)

var configEnvVars = []string{
	config.ConfigFileEnv,
	"PORT", "ENVIRONMENT", "DEBUG", "PROJECT_ID", "GEMINI_API_KEY", "JWT_SECRET", "ENCRYPTION_KEY",
	"STORE_BACKEND", "FILE_BACKEND", "CV_BUCKET_NAME", "UPLOAD_DIR", "PAGES_PER_CONTEXT",
	"MAX_CONCURRENT_SEARCHES", "REMOTE_WORK_SCHEDULE", "SOURCE_TIMEOUT_SECONDS", "ADMIN_EMAILS",
}

// isolateEnv unsets the config variables for the duration of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		if old, ok := os.LookupEnv(key); ok {
			_ = os.Unsetenv(key)
			t.Cleanup(func() { _ = os.Setenv(key, old) })
		}
	}
}

func setEnv(key, value string) func() {
	_ = os.Setenv(key, value)
	return func() { _ = os.Unsetenv(key) }
}

func TestConfigLoader(t *testing.T) {
	isolateEnv(t)

	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, "8080")
				convey.So(cfg.SourceTimeoutSeconds, convey.ShouldEqual, 10)
				convey.So(cfg.PagesPerContext, convey.ShouldEqual, 1)
				convey.So(cfg.RemoteWorkSchedule, convey.ShouldEqual, "2")
				convey.So(cfg.DefaultRecommendationLimit, convey.ShouldEqual, 50)
				convey.So(cfg.StoreBackend, convey.ShouldEqual, config.StoreFirestore)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			defer setEnv("PORT", "9090")()
			defer setEnv("PAGES_PER_CONTEXT", "3")()
			defer setEnv("DEBUG", "true")()
			defer setEnv("ADMIN_EMAILS", " Admin@Example.com , ops@example.com,")()

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, "9090")
				convey.So(cfg.PagesPerContext, convey.ShouldEqual, 3)
				convey.So(cfg.Debug, convey.ShouldBeTrue)
				convey.So(cfg.Admins(), convey.ShouldResemble, []string{"admin@example.com", "ops@example.com"})
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := filepath.Join(t.TempDir(), "hiremind.yaml")
			yamlContent := `
port: "7070"
store_backend: sqlite
sqlite_path: /tmp/hiremind.db
max_concurrent_searches: 8
`
			convey.So(os.WriteFile(path, []byte(yamlContent), 0o600), convey.ShouldBeNil)
			defer setEnv(config.ConfigFileEnv, path)()

			convey.Convey("And env vars take precedence over the file", func() {
				defer setEnv("MAX_CONCURRENT_SEARCHES", "2")()

				cfg, err := config.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, "7070")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/hiremind.db")
				convey.So(cfg.MaxConcurrentSearches, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		cfg := config.New()
		cfg.ProjectID = "hiremind-dev"
		cfg.CVBucketName = "hiremind-cvs"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "firestore needs project", mutate: func(c *config.Config) { c.ProjectID = "" }, field: "PROJECT_ID"},
		{name: "gcs needs bucket", mutate: func(c *config.Config) { c.CVBucketName = "" }, field: "CV_BUCKET_NAME"},
		{name: "unknown store", mutate: func(c *config.Config) { c.StoreBackend = "mongo" }, field: "STORE_BACKEND"},
		{name: "placeholder secret in production", mutate: func(c *config.Config) { c.Environment = config.EnvProduction }, field: "JWT_SECRET"},
		{name: "zero pages", mutate: func(c *config.Config) { c.PagesPerContext = 0 }, field: "PAGES_PER_CONTEXT"},
		{name: "zero concurrency", mutate: func(c *config.Config) { c.MaxConcurrentSearches = 0 }, field: "MAX_CONCURRENT_SEARCHES"},
		{
			name: "sqlite with local files and api key",
			mutate: func(c *config.Config) {
				c.ProjectID = ""
				c.StoreBackend = config.StoreSQLite
				c.FileBackend = config.FilesLocal
				c.GeminiAPIKey = "key"
			},
		},
		{
			name: "no gemini credentials",
			mutate: func(c *config.Config) {
				c.ProjectID = ""
				c.StoreBackend = config.StoreSQLite
				c.FileBackend = config.FilesLocal
			},
			field: "GEMINI_API_KEY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			cfgErr, ok := err.(*config.ConfigError)
			if !ok {
				t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
			}
			if cfgErr.Field != tt.field {
				t.Fatalf("expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}
}
