package cliutil

import (
	"strings"
	"testing"
)

func TestRedactSecretsMasksTemplates(t *testing.T) {
	got := RedactSecrets("connecting with token ${API_TOKEN}")
	if strings.Contains(got, "API_TOKEN") {
		t.Fatalf("template reference leaked: %q", got)
	}
	if !strings.Contains(got, "[redacted]") {
		t.Fatalf("expected redaction marker: %q", got)
	}
}

func TestRedactSecretsMasksAssignments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "password", input: "DB_PASSWORD=hunter2"},
		{name: "colonSeparated", input: "API_KEY: abcd1234"},
		{name: "quoted", input: `ACCESS_TOKEN="tok-123"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RedactSecrets(tc.input)
			if strings.Contains(got, "hunter2") || strings.Contains(got, "abcd1234") || strings.Contains(got, "tok-123") {
				t.Fatalf("secret value leaked: %q", got)
			}
			if !strings.Contains(got, "[redacted]") {
				t.Fatalf("expected redaction marker: %q", got)
			}
		})
	}
}

func TestRedactSecretsLeavesPlainText(t *testing.T) {
	input := "worker listening on :8080"
	if got := RedactSecrets(input); got != input {
		t.Fatalf("plain message altered: %q", got)
	}
}

func TestRedactEnv(t *testing.T) {
	env := map[string]string{
		"QUEUE_URL":   "amqp://localhost",
		"DB_PASSWORD": "hunter2",
		"API_KEY":     "abcd",
		"TEMPLATED":   "${LATE_BOUND}",
	}
	got := RedactEnv(env)
	if got["QUEUE_URL"] != "amqp://localhost" {
		t.Fatalf("plain value altered: %q", got["QUEUE_URL"])
	}
	for _, key := range []string{"DB_PASSWORD", "API_KEY", "TEMPLATED"} {
		if got[key] != "[redacted]" {
			t.Fatalf("%s not redacted: %q", key, got[key])
		}
	}
}

func TestSecretEnvKey(t *testing.T) {
	for _, key := range []string{"DB_PASSWORD", "api_key", "AWS_SECRET_ACCESS_KEY", "SERVICE_TOKEN"} {
		if !SecretEnvKey(key) {
			t.Fatalf("expected %q to be treated as secret", key)
		}
	}
	for _, key := range []string{"QUEUE_URL", "HOME", "PATH"} {
		if SecretEnvKey(key) {
			t.Fatalf("expected %q to be treated as plain", key)
		}
	}
}
