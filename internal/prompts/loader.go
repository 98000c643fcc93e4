// Package prompts holds the templates the pipeline sends to its
// language-model collaborator. Templates live in embedded JSON files, one
// file per pipeline concern, keyed by operation.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// File identifies one embedded prompt file.
type File string

// Key identifies one prompt within a file.
type Key string

// Prompt files, one per pipeline concern.
const (
	Matching File = "matching.json"
	Profile  File = "profile.json"
	Answers  File = "answers.json"
)

// Prompt keys.
const (
	ScorePosting        Key = "score_posting"
	ExtractProfile      Key = "extract_profile"
	ClarifyingQuestions Key = "clarifying_questions"
	DraftAnswer         Key = "draft_answer"
)

// cache stores parsed prompt files to avoid repeated JSON parsing
var (
	cache   = make(map[File]map[Key]string)
	cacheMu sync.RWMutex
)

// Get retrieves one prompt template. Returns an error if the file or key is
// not found.
func Get(file File, key Key) (string, error) {
	templates, err := loadFile(file)
	if err != nil {
		return "", err
	}

	template, exists := templates[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}

	return template, nil
}

// MustGet retrieves a prompt, panicking if it is missing. Use this for
// prompts that are required at initialization time.
func MustGet(file File, key Key) string {
	template, err := Get(file, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return template
}

// Format replaces placeholders in the form {{.Key}} with values from data.
// Unknown placeholders are left in place.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// loadFile loads and caches a prompt file.
func loadFile(file File) (map[Key]string, error) {
	cacheMu.RLock()
	if templates, exists := cache[file]; exists {
		cacheMu.RUnlock()
		return templates, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(string(file))
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}

	var templates map[Key]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
	}

	cacheMu.Lock()
	cache[file] = templates
	cacheMu.Unlock()

	return templates, nil
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[File]map[Key]string)
	cacheMu.Unlock()
}
