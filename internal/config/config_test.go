package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")
	t.Setenv("ARK_API_KEY", "")
	t.Setenv("ARK_ACCESS_KEY", "")
	t.Setenv("ARK_SECRET_KEY", "")
	t.Setenv("ARK_MODEL", "")
	t.Setenv("MAX_CONTEXT_MESSAGES", "")
	t.Setenv("TITLE_WORKERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Database.Path != "solace.db" {
		t.Fatalf("database path = %q", cfg.Database.Path)
	}
	if cfg.Auth.TokenTTLMinutes != 43200 {
		t.Fatalf("ttl = %d", cfg.Auth.TokenTTLMinutes)
	}
	if cfg.AI.Enabled() {
		t.Fatal("AI must be disabled without credentials")
	}
	if cfg.AI.MaxContextMessages != 10 {
		t.Fatalf("context window = %d", cfg.AI.MaxContextMessages)
	}
	if cfg.AI.TitleWorkers != 4 {
		t.Fatalf("title workers = %d", cfg.AI.TitleWorkers)
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		t.Fatal("default origins must not be empty")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("missing SECRET_KEY must fail")
	}
}

func TestLoadPortForms(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	t.Setenv("PORT", "9000")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}

	t.Setenv("PORT", "127.0.0.1:9000")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadAIEnabled(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ARK_API_KEY", "ark-key")
	t.Setenv("ARK_MODEL", "doubao-pro-32k")
	t.Setenv("ARK_TEMPERATURE", "0.7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if !cfg.AI.Enabled() {
		t.Fatal("AI must be enabled with an API key")
	}
	if cfg.AI.Temperature == nil || *cfg.AI.Temperature != 0.7 {
		t.Fatalf("temperature = %v", cfg.AI.Temperature)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ARK_TEMPERATURE", "warm")
	if _, err := Load(); err == nil {
		t.Fatal("non-numeric ARK_TEMPERATURE must fail")
	}
}
