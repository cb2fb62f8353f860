package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("failed to parse JSON log %q: %v", line, err)
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default config", cfg: DefaultConfig()},
		{name: "slog text", cfg: Config{Level: "debug", Format: "text"}},
		{name: "zap json", cfg: Config{Level: "info", Backend: BackendZap}},
		{name: "zap console", cfg: Config{Level: "warn", Format: "console", Backend: "ZAP"}},
		{name: "unknown backend", cfg: Config{Backend: "logrus"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_Backends(t *testing.T) {
	for _, backend := range []string{BackendSlog, BackendZap} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "debug", Format: "json", Backend: backend, Output: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			tests := []struct {
				level   string
				logFunc func(string, ...any)
			}{
				{"debug", l.Debug},
				{"info", l.Info},
				{"warn", l.Warn},
				{"error", l.Error},
			}

			for _, tt := range tests {
				buf.Reset()
				tt.logFunc("family created", "family", "http_requests")

				entry := decode(t, buf.String())
				if entry["msg"] != "family created" {
					t.Errorf("%s: msg = %v, want 'family created'", tt.level, entry["msg"])
				}
				if entry["family"] != "http_requests" {
					t.Errorf("%s: family = %v, want http_requests", tt.level, entry["family"])
				}
				if lvl, _ := entry["level"].(string); !strings.EqualFold(lvl, tt.level) {
					t.Errorf("level = %v, want %s", entry["level"], tt.level)
				}
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	for _, backend := range []string{BackendSlog, BackendZap} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Backend: backend, Output: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			l.With("component", "registry").Info("registered")

			entry := decode(t, buf.String())
			if entry["component"] != "registry" {
				t.Errorf("component = %v, want registry", entry["component"])
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	for _, backend := range []string{BackendSlog, BackendZap} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Backend: backend, Output: &buf})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			l.Debug("hidden")
			if buf.Len() != 0 {
				t.Errorf("debug entry written at info level: %s", buf.String())
			}

			SetLevel("debug")
			if GetLevel() != "debug" {
				t.Errorf("GetLevel() = %q, want debug", GetLevel())
			}
			l.Debug("shown")
			if !strings.Contains(buf.String(), "shown") {
				t.Error("debug entry missing after SetLevel(debug)")
			}

			buf.Reset()
			SetLevel("error")
			l.Warn("hidden")
			if buf.Len() != 0 {
				t.Errorf("warn entry written at error level: %s", buf.String())
			}
			SetLevel("info")
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		"DEBUG":   "debug",
		"warning": "warn",
		"error":   "error",
		"bogus":   "info",
		"":        "info",
	}
	defer SetLevel("info")

	for in, want := range tests {
		SetLevel(in)
		if got := GetLevel(); got != want {
			t.Errorf("SetLevel(%q): GetLevel() = %q, want %q", in, got, want)
		}
	}
}

func TestDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	SetDefault(l)
	SetDefault(nil)

	Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Error("package-level Info did not use the default logger")
	}
}

func TestL(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithRequestID(WithLogger(context.Background(), l), "01HZX3")
	L(ctx).Info("handled")

	entry := decode(t, buf.String())
	if entry["request_id"] != "01HZX3" {
		t.Errorf("request_id = %v, want 01HZX3", entry["request_id"])
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("FromContext should return default logger, got nil")
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("RequestIDFromContext should be empty without a request ID")
	}
}
