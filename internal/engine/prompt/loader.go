package prompt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// Load parses and validates a prompt definition from markdown bytes.
func Load(source string, data []byte) (*Prompt, error) {
	config, body, err := parseYAMLWithFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", source, err)
	}

	if strings.TrimSpace(config.SystemTemplate) == "" {
		config.SystemTemplate = strings.TrimSpace(body)
	}

	if strings.TrimSpace(config.SystemTemplate) == "" {
		return nil, fmt.Errorf("prompt %s missing system_template", source)
	}
	if strings.TrimSpace(config.Slug) == "" {
		return nil, fmt.Errorf("prompt %s missing slug", source)
	}

	return &Prompt{Config: config, Source: source}, nil
}

// LoadFromDir reads all prompt files (.md with YAML frontmatter) from a
// directory, allowing applications to override the embedded set.
func LoadFromDir(dir string) ([]*Prompt, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scan prompts: %w", err)
	}
	results := make([]*Prompt, 0, len(entries))
	for _, path := range entries {
		data, err := os.ReadFile(path) // #nosec G304 -- prompt path is user-provided
		if err != nil {
			return nil, fmt.Errorf("read prompt %s: %w", path, err)
		}
		loaded, err := Load(path, data)
		if err != nil {
			return nil, err
		}
		results = append(results, loaded)
	}
	return results, nil
}

func parseYAMLWithFrontmatter(data []byte) (Config, string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Config{}, "", fmt.Errorf("empty prompt")
	}

	text := string(trimmed)
	if !strings.HasPrefix(text, frontmatterDelimiter) {
		return Config{}, text, nil
	}

	rest := strings.TrimPrefix(text, frontmatterDelimiter)
	idx := strings.Index(rest, "\n"+frontmatterDelimiter)
	if idx < 0 {
		return Config{}, "", fmt.Errorf("unterminated frontmatter")
	}

	var config Config
	if err := yaml.Unmarshal([]byte(rest[:idx]), &config); err != nil {
		return Config{}, "", fmt.Errorf("decode frontmatter: %w", err)
	}

	body := rest[idx+len("\n"+frontmatterDelimiter):]
	body = strings.TrimPrefix(body, frontmatterDelimiter)
	if after, ok := strings.CutPrefix(body, "\n"); ok {
		body = after
	}

	return config, strings.TrimSpace(body), nil
}
