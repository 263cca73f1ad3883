package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/tabkit/component"
	"github.com/kbukum/tabkit/logger"
	"github.com/kbukum/tabkit/storage"
	"github.com/kbukum/tabkit/storage/local"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestReadAll_Local(t *testing.T) {
	dir := t.TempDir()
	abs := writeFile(t, dir, "people.csv", "name\nAlice\n")

	base, err := local.NewStorage(dir)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	got, err := storage.ReadAll(context.Background(), base, "people.csv", 0)
	if err != nil || string(got) != "name\nAlice\n" {
		t.Fatalf("relative read = %q, %v", got, err)
	}

	plain, _ := local.NewStorage("")
	got, err = storage.ReadAll(context.Background(), plain, abs, 0)
	if err != nil || string(got) != "name\nAlice\n" {
		t.Fatalf("absolute read = %q, %v", got, err)
	}
}

func TestReadAll_NotFound(t *testing.T) {
	s, _ := local.NewStorage(t.TempDir())
	_, err := storage.ReadAll(context.Background(), s, "missing.csv", 0)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReadAll_Limit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.csv", strings.Repeat("x", 64))
	s, _ := local.NewStorage(dir)

	if _, err := storage.ReadAll(context.Background(), s, "big.csv", 64); err != nil {
		t.Fatalf("exact limit should pass: %v", err)
	}
	_, err := storage.ReadAll(context.Background(), s, "big.csv", 63)
	if !errors.Is(err, storage.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestLocalExists(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", "[]")
	s, _ := local.NewStorage(dir)

	ok, err := s.Exists(context.Background(), "a.json")
	if err != nil || !ok {
		t.Errorf("Exists(a.json) = %v, %v", ok, err)
	}
	ok, err = s.Exists(context.Background(), "b.json")
	if err != nil || ok {
		t.Errorf("Exists(b.json) = %v, %v", ok, err)
	}
}

func TestLocalBasePathMustExist(t *testing.T) {
	if _, err := local.NewStorage(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing base path")
	}
}

func TestConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{"local defaults", storage.Config{}, false},
		{"s3 needs bucket", storage.Config{Provider: storage.ProviderS3}, true},
		{"s3 ok", storage.Config{Provider: storage.ProviderS3, Bucket: "b"}, false},
		{"unknown provider", storage.Config{Provider: "ftp"}, true},
		{"bad size", storage.Config{MaxFileSize: "lots"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	cfg := storage.Config{}
	cfg.ApplyDefaults()
	if cfg.MaxBytes() != 100*1024*1024 {
		t.Errorf("default MaxBytes = %d", cfg.MaxBytes())
	}
}

func TestNew_LocalRegistered(t *testing.T) {
	s, err := storage.New(storage.Config{}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.(*local.Storage); !ok {
		t.Errorf("expected *local.Storage, got %T", s)
	}
}

func TestComponentLifecycle(t *testing.T) {
	c := storage.NewComponent(storage.Config{BasePath: t.TempDir()}, logger.Nop())
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if c.Storage() == nil {
		t.Fatal("expected storage after start")
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %+v", h)
	}
	if d := c.Describe(); !strings.Contains(d.Details, "provider=local") {
		t.Errorf("describe = %+v", d)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if c.Storage() != nil {
		t.Error("expected storage released after stop")
	}
}
