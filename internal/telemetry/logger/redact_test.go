package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"password", true},
		{"DB_PASSWORD", true},
		{"Authorization", true},
		{"api_token", true},
		{"client_secret", true},
		{"family", false},
		{"method", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitiveKey(tt.key); got != tt.want {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestRedactSensitive(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		want string
	}{
		{"sensitive", slog.String("password", "hunter2"), redactedValue},
		{"empty sensitive", slog.String("password", ""), ""},
		{"plain", slog.String("method", "GET"), "GET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactSensitive(tt.attr).Value.String(); got != tt.want {
				t.Errorf("redactSensitive() = %q, want %q", got, tt.want)
			}
		})
	}

	group := slog.Group("req", slog.String("authorization", "Bearer x"), slog.String("path", "/"))
	got := redactSensitive(group).Value.Group()
	if got[0].Value.String() != redactedValue || got[1].Value.String() != "/" {
		t.Errorf("group not redacted: %v", got)
	}
}

func TestRedactArgs(t *testing.T) {
	args := []any{"token", "abc", "method", "GET", "password", 42}
	got := redactArgs(args)

	if got[1] != redactedValue {
		t.Errorf("token value = %v, want redacted", got[1])
	}
	if got[3] != "GET" || got[5] != 42 {
		t.Errorf("non-sensitive values changed: %v", got)
	}
	if args[1] != "abc" {
		t.Error("redactArgs modified its input")
	}
}

func TestRedaction_Backends(t *testing.T) {
	for _, backend := range []string{BackendSlog, BackendZap} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(Config{Level: "info", Backend: backend, Output: &buf})
			if err != nil {
				t.Fatal(err)
			}
			l.Info("login", "password", "hunter2")
			if strings.Contains(buf.String(), "hunter2") {
				t.Errorf("secret leaked: %s", buf.String())
			}
		})
	}
}
