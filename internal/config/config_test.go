package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "ecommerce-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "ecommerce-auth")
	}
	if cfg.JWTAudience != "ecommerce-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "ecommerce-api")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.LockoutThreshold != 5 {
		t.Errorf("LockoutThreshold = %d, want 5", cfg.LockoutThreshold)
	}
	if cfg.DefaultMinStockLevel != 10 {
		t.Errorf("DefaultMinStockLevel = %d, want 10", cfg.DefaultMinStockLevel)
	}
	if cfg.EventsKafkaTopic != "ecommerce-events" {
		t.Errorf("EventsKafkaTopic = %q, want %q", cfg.EventsKafkaTopic, "ecommerce-events")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")
	os.Setenv("LOCKOUT_THRESHOLD", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if cfg.LockoutThreshold != 3 {
		t.Errorf("LockoutThreshold = %d, want 3", cfg.LockoutThreshold)
	}
}

func TestLoad_BcryptCostRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero defaults", "0", 12, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("HTTP_ADDR", ":8080")
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestLoad_LockoutThresholdMustBePositive(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("LOCKOUT_THRESHOLD", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("Load should return error for negative LOCKOUT_THRESHOLD")
	}
}

func TestAccessTTL(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("JWT_ACCESS_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.AccessTTL(); got != 30*time.Minute {
		t.Errorf("AccessTTL = %v, want %v", got, 30*time.Minute)
	}

	cfg.JWTAccessTTL = "invalid"
	if got := cfg.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL invalid = %v, want %v (default)", got, 15*time.Minute)
	}
	cfg.JWTAccessTTL = "-5m"
	if got := cfg.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL negative = %v, want %v (default)", got, 15*time.Minute)
	}
}

func TestRefreshTTL(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("JWT_REFRESH_TTL", "336h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.RefreshTTL(); got != 336*time.Hour {
		t.Errorf("RefreshTTL = %v, want %v", got, 336*time.Hour)
	}

	cfg.JWTRefreshTTL = "invalid"
	if got := cfg.RefreshTTL(); got != 168*time.Hour {
		t.Errorf("RefreshTTL invalid = %v, want %v (default)", got, 168*time.Hour)
	}
}

func TestEventsKafkaBrokersList(t *testing.T) {
	cfg := &Config{EventsKafkaBrokers: "localhost:9092, broker2:9092 ,"}
	got := cfg.EventsKafkaBrokersList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Errorf("brokers = %v, want two trimmed entries", got)
	}

	cfg = &Config{}
	if got := cfg.EventsKafkaBrokersList(); got != nil {
		t.Errorf("empty brokers = %v, want nil", got)
	}
}
