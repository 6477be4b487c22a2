package cliutil

import (
	"regexp"
	"strings"
)

const redactedPlaceholder = "[redacted]"

var (
	templateVarPattern = regexp.MustCompile(`\$\{[^}]+\}`)
	secretNamePattern  = regexp.MustCompile(`(?i)(password|passwd|secret|token|api[_-]?key|private[_-]?key|credential)`)
	secretKeyPattern   = regexp.MustCompile(`(?i)\b([A-Z0-9_]*(?:PASSWORD|SECRET|TOKEN|API_KEY|ACCESS_KEY|CREDENTIALS?)[A-Z0-9_]*)\b(\s*[:=]\s*)(["']?)([^"'\s]+)(["']?)`)
)

// RedactSecrets masks ${VAR} template references and values assigned to
// secret-looking keys in the supplied string, so job output and echoed
// manifests do not leak credentials.
func RedactSecrets(message string) string {
	if message == "" {
		return message
	}
	redacted := templateVarPattern.ReplaceAllStringFunc(message, func(string) string {
		return "${" + redactedPlaceholder + "}"
	})
	return secretKeyPattern.ReplaceAllString(redacted, "$1$2$3"+redactedPlaceholder+"$5")
}

// SecretEnvKey reports whether an environment variable name looks like it
// holds a credential and should not be echoed verbatim.
func SecretEnvKey(key string) bool {
	return secretNamePattern.MatchString(key)
}

// RedactEnv returns a copy of env with secret-looking values replaced.
func RedactEnv(env map[string]string) map[string]string {
	if len(env) == 0 {
		return nil
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		if SecretEnvKey(k) || strings.Contains(v, "${") {
			out[k] = redactedPlaceholder
			continue
		}
		out[k] = v
	}
	return out
}
