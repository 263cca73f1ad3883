package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/tabkit/bus/redis"
	apperrors "github.com/kbukum/tabkit/errors"
	"github.com/kbukum/tabkit/logger"
	"github.com/kbukum/tabkit/testutil"
)

// writeFile creates name under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

// execute runs the CLI with args and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

type resultLine struct {
	Index   int              `json:"index"`
	Records []map[string]any `json:"records"`
	Error   *struct {
		Code apperrors.ErrorCode `json:"code"`
	} `json:"error"`
}

func parseResults(t *testing.T, out string) []resultLine {
	t.Helper()
	var lines []resultLine
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var l resultLine
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			t.Fatalf("bad output line %q: %v", sc.Text(), err)
		}
		lines = append(lines, l)
	}
	return lines
}

const quietConfig = "logging:\n  level: error\n"

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yml", quietConfig)
	writeFile(t, dir, "people.csv", "name,age,country\nAlice,30,US\nBob,x,UK\n")
	job := writeFile(t, dir, "job.yaml", `
settings:
  - path: people.csv
    filter: {country: US}
    format:
      toInt: [age]
  - text: "a,b\n1,2\n"
  - path: missing.csv
`)

	stdout, _, err := execute(t, "run", job, "--config", cfg)
	if err == nil || !strings.Contains(err.Error(), "1 of 3 settings failed") {
		t.Fatalf("expected one failure, got %v", err)
	}

	lines := parseResults(t, stdout)
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), stdout)
	}
	for i, l := range lines {
		if l.Index != i {
			t.Errorf("line %d has index %d", i, l.Index)
		}
	}
	if got := lines[0].Records; len(got) != 1 || got[0]["name"] != "Alice" || got[0]["age"] != float64(30) {
		t.Errorf("line 0 records = %v", got)
	}
	if got := lines[1].Records; len(got) != 1 || got[0]["a"] != "1" || got[0]["b"] != "2" {
		t.Errorf("line 1 records = %v", got)
	}
	if lines[2].Error == nil || lines[2].Error.Code != apperrors.ErrCodeReadFailed {
		t.Errorf("line 2 = %+v", lines[2])
	}
}

func TestRun_NonFiniteAsNull(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yml", quietConfig)
	job := writeFile(t, dir, "job.yaml", `
settings:
  - text: "n\nabc\n"
    format:
      toFloat: [n]
`)
	stdout, _, err := execute(t, "run", job, "--config", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, `"n":null`) {
		t.Errorf("expected NaN rendered as null, got %s", stdout)
	}
}

func TestRun_InvalidSetting(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yml", quietConfig)
	job := writeFile(t, dir, "job.yaml", `
settings:
  - url: http://127.0.0.1:1/people
  - data: [{id: 1}]
`)
	stdout, stderr, err := execute(t, "run", job, "--config", cfg)
	if err == nil {
		t.Fatal("expected failure for url without format")
	}
	if !strings.Contains(stderr, "setting 0") {
		t.Errorf("stderr should name the setting: %s", stderr)
	}
	lines := parseResults(t, stdout)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0].Error == nil || lines[0].Error.Code != apperrors.ErrCodeInvalidSetting {
		t.Errorf("line 0 = %+v", lines[0])
	}
	if len(lines[1].Records) != 1 || lines[1].Records[0]["id"] != float64(1) {
		t.Errorf("line 1 = %+v", lines[1])
	}
}

func TestRun_URLWithFormatFlag(t *testing.T) {
	srv := testutil.NewFileServer()
	testutil.T(t).Setup(srv)
	srv.Put("/people", []byte(`[{"name":"Alice"}]`))

	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yml", quietConfig)
	job := writeFile(t, dir, "job.yaml", "format: csv\nsettings:\n  - url: "+srv.URL("/people")+"\n")

	stdout, _, err := execute(t, "run", job, "--config", cfg, "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	lines := parseResults(t, stdout)
	if len(lines) != 1 || len(lines[0].Records) != 1 || lines[0].Records[0]["name"] != "Alice" {
		t.Errorf("flag should override job format: %s", stdout)
	}
}

func TestRun_Events(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yml", quietConfig)
	job := writeFile(t, dir, "job.yaml", `
settings:
  - text: "a\n1\n"
    event: rows
`)
	_, stderr, err := execute(t, "run", job, "--config", cfg, "--events")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, `"name":"rows"`) {
		t.Errorf("expected rows event on stderr: %s", stderr)
	}
}

func TestRun_RedisBackend(t *testing.T) {
	rc := testutil.NewRedisComponent()
	testutil.T(t).Setup(rc)

	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yml", quietConfig+"bus:\n  backend: redis\n  redis:\n    addr: "+rc.Addr()+"\n")
	job := writeFile(t, dir, "job.yaml", "settings:\n  - text: \"a\\n1\\n\"\n")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events, err := redis.NewWithClient(rc.Client(), "tabkit:", logger.Nop()).Subscribe(ctx, "data")
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := execute(t, "run", job, "--config", cfg); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-events:
		if ev.Name != "data" || len(ev.Args) != 2 {
			t.Errorf("event = %+v", ev)
		}
	case <-ctx.Done():
		t.Fatal("no event published to redis")
	}
}

func TestRun_MissingJob(t *testing.T) {
	_, _, err := execute(t, "run", filepath.Join(t.TempDir(), "nope.yaml"))
	if !apperrors.HasCode(err, apperrors.ErrCodeReadFailed) {
		t.Errorf("expected READ_FAILED, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yml", quietConfig)

	stdout, _, err := execute(t, "check", "--config", cfg)
	if err != nil {
		t.Fatal(err)
	}
	var health struct {
		Service    string `json:"service"`
		Status     string `json:"status"`
		Components []struct {
			Name string `json:"name"`
		} `json:"components"`
	}
	if err := json.Unmarshal([]byte(stdout), &health); err != nil {
		t.Fatalf("bad output %q: %v", stdout, err)
	}
	if health.Service != "tabkit" || health.Status != "healthy" {
		t.Errorf("health = %+v", health)
	}
	if len(health.Components) != 1 || health.Components[0].Name != "storage" {
		t.Errorf("components = %+v", health.Components)
	}
}

func TestCheck_BackendDown(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yml", quietConfig+`bus:
  backend: redis
  redis:
    addr: 127.0.0.1:1
    dial_timeout: 50ms
    max_retries: 1
`)
	if _, _, err := execute(t, "check", "--config", cfg); err == nil {
		t.Error("expected check to fail when redis is unreachable")
	}
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()
	job := writeFile(t, dir, "job.yaml", "settings:\n  - text: a\n")
	tests := []struct {
		name string
		args []string
	}{
		{"missing config file", []string{"run", job, "--config", filepath.Join(dir, "absent.yml")}},
		{"unknown backend", []string{"run", job, "--config", writeFile(t, dir, "bad.yml", "bus:\n  backend: nats\n")}},
		{"bad log level", []string{"check", "--config", writeFile(t, dir, "ok.yml", quietConfig), "--log-level", "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "tabkit ") {
		t.Errorf("version = %q", stdout)
	}

	stdout, _, err = execute(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatal(err)
	}
	if info["go_version"] == "" || info["version"] == nil {
		t.Errorf("info = %v", info)
	}
}
