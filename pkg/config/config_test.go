package config

import (
	"testing"
	"time"
)

func TestParseAliases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "empty",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "single pair",
			input: "club=team",
			want:  map[string]string{"club": "team"},
		},
		{
			name:  "multiple pairs",
			input: "club=team,rating=ovr",
			want:  map[string]string{"club": "team", "rating": "ovr"},
		},
		{
			name:  "whitespace trimmed",
			input: " club = team , rating = ovr ",
			want:  map[string]string{"club": "team", "rating": "ovr"},
		},
		{
			name:  "alias keys lowercased",
			input: "Club=team",
			want:  map[string]string{"club": "team"},
		},
		{
			name:  "malformed pairs skipped",
			input: "club=team,broken,=x,y=",
			want:  map[string]string{"club": "team"},
		},
		{
			name:  "value may contain equals",
			input: "expr=a=b",
			want:  map[string]string{"expr": "a=b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAliases(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseAliases(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("parseAliases(%q)[%q] = %q, want %q", tt.input, k, got[k], v)
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Datasource: DatasourceConfig{MaxRows: 1000},
			LLM:        LLMConfig{Provider: "openai"},
			Auth:       AuthConfig{EnableVerification: false},
		}
	}

	t.Run("valid", func(t *testing.T) {
		if err := base().validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing jwt secret with verification on", func(t *testing.T) {
		cfg := base()
		cfg.Auth.EnableVerification = true
		if err := cfg.validate(); err == nil {
			t.Error("expected error for missing JWT secret")
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := base()
		cfg.LLM.Provider = "bard"
		if err := cfg.validate(); err == nil {
			t.Error("expected error for unknown provider")
		}
	})

	t.Run("anthropic provider accepted", func(t *testing.T) {
		cfg := base()
		cfg.LLM.Provider = "anthropic"
		if err := cfg.validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("non-positive max rows", func(t *testing.T) {
		cfg := base()
		cfg.Datasource.MaxRows = 0
		if err := cfg.validate(); err == nil {
			t.Error("expected error for zero max rows")
		}
	})
}

func TestTimeoutHelpers(t *testing.T) {
	ds := DatasourceConfig{QueryTimeoutSeconds: 30}
	if got := ds.QueryTimeout(); got != 30*time.Second {
		t.Errorf("QueryTimeout() = %v, want 30s", got)
	}

	llm := LLMConfig{TimeoutSeconds: 60}
	if got := llm.Timeout(); got != time.Minute {
		t.Errorf("Timeout() = %v, want 1m", got)
	}

	db := DatabaseConfig{MaxConnLifetimeMinutes: 60, MaxConnIdleMinutes: 30}
	if got := db.ConnLifetime(); got != time.Hour {
		t.Errorf("ConnLifetime() = %v, want 1h", got)
	}
	if got := db.ConnIdleTime(); got != 30*time.Minute {
		t.Errorf("ConnIdleTime() = %v, want 30m", got)
	}
}

func TestConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "engine",
		Password: "secret",
		Database: "asksql",
		SSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=engine password=secret dbname=asksql sslmode=require"
	if got := cfg.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
