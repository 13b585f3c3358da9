package app

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("JWT_SECRET", "j")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != StorePostgres {
		t.Fatalf("driver = %q", cfg.StoreDriver)
	}
	if cfg.DashboardTZ != "Asia/Ho_Chi_Minh" || cfg.Location().String() != "Asia/Ho_Chi_Minh" {
		t.Fatalf("unexpected time zone %q", cfg.DashboardTZ)
	}
	if cfg.CacheTTL != 10*time.Minute || cfg.JWTTTL != 12*time.Hour {
		t.Fatalf("unexpected ttls %v %v", cfg.CacheTTL, cfg.JWTTTL)
	}
	if cfg.IsProduction() {
		t.Fatalf("default env must not be production")
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"driver":   {"STORE_DRIVER", "sqlite"},
		"timezone": {"DASHBOARD_TZ", "Mars/Olympus"},
		"jwt":      {"JWT_SECRET", ""},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(kv[0], kv[1])
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected %s=%q to be rejected", kv[0], kv[1])
			}
		})
	}
}
