package job

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a job manifest from the provided path. Paths inside the
// manifest (workdir, envFromFile, pidfile) are resolved relative to the
// manifest's directory, and ${VAR} references in env values are expanded
// from the parent environment.
func Load(path string) (*Job, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve job path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open job file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var j Job
	if err := decoder.Decode(&j); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}

	jobDir := filepath.Dir(absPath)
	j.Workdir = resolvePath(jobDir, os.ExpandEnv(j.Workdir))

	var inlineEnv map[string]string
	if len(j.Env) > 0 {
		inlineEnv = make(map[string]string, len(j.Env))
		for k, v := range j.Env {
			inlineEnv[k] = os.ExpandEnv(v)
		}
	}

	var fileEnv map[string]string
	if j.EnvFromFile != "" {
		expanded := os.ExpandEnv(j.EnvFromFile)
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Clean(filepath.Join(jobDir, expanded))
		}
		j.EnvFromFile = expanded

		fileEnv, err = loadEnvFile(expanded)
		if err != nil {
			return nil, fmt.Errorf("job.envFromFile: %w", err)
		}
	}

	// Inline values win over the env file.
	var merged map[string]string
	if len(fileEnv) > 0 {
		merged = make(map[string]string, len(fileEnv)+len(inlineEnv))
		for k, v := range fileEnv {
			merged[k] = v
		}
	}
	if len(inlineEnv) > 0 {
		if merged == nil {
			merged = make(map[string]string, len(inlineEnv))
		}
		for k, v := range inlineEnv {
			merged[k] = v
		}
	}
	j.Env = merged

	if j.PIDFile != "" {
		j.PIDFile = resolvePath(jobDir, os.ExpandEnv(j.PIDFile))
	}

	j.ApplyDefaults()
	if err := j.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	return &j, nil
}

func resolvePath(base, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(base, path))
}

func loadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load env file %q: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	values := make(map[string]string)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if strings.HasPrefix(raw, "export ") {
			raw = strings.TrimSpace(raw[len("export "):])
		}
		sep := strings.IndexRune(raw, '=')
		if sep <= 0 {
			return nil, fmt.Errorf("load env file %q: invalid line %d", path, lineNo)
		}
		key := strings.TrimSpace(raw[:sep])
		if key == "" {
			return nil, fmt.Errorf("load env file %q: invalid key on line %d", path, lineNo)
		}
		value := strings.TrimSpace(raw[sep+1:])
		literal := false
		if strings.HasPrefix(value, "\"") {
			if len(value) < 2 || value[len(value)-1] != '"' {
				return nil, fmt.Errorf("load env file %q: unmatched quote on line %d", path, lineNo)
			}
			unquoted, err := strconv.Unquote(value)
			if err != nil {
				return nil, fmt.Errorf("load env file %q: parse value for %s on line %d: %w", path, key, lineNo, err)
			}
			value = unquoted
		} else if strings.HasPrefix(value, "'") {
			if len(value) < 2 || value[len(value)-1] != '\'' {
				return nil, fmt.Errorf("load env file %q: unmatched quote on line %d", path, lineNo)
			}
			value = value[1 : len(value)-1]
			// Single quotes suppress expansion.
			literal = true
		} else if comment := strings.IndexRune(value, '#'); comment >= 0 {
			value = strings.TrimSpace(value[:comment])
		}
		if !literal {
			value = os.ExpandEnv(value)
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("load env file %q: %w", path, err)
	}
	return values, nil
}
