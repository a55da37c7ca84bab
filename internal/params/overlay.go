package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidOverlay is returned when a client overlay is not a JSON object
var ErrInvalidOverlay = errors.New("invalid parameter overlay")

// ParseOverlay decodes a JSON object of parameter overrides. An empty string
// yields no overrides.
func ParseOverlay(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	var overlay map[string]any
	if err := dec.Decode(&overlay); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOverlay, err)
	}
	if overlay == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidOverlay)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidOverlay)
	}
	return overlay, nil
}

// Rejection describes an overlay key that was not applied
type Rejection struct {
	Key    string
	Reason string
}

// ApplyOverlay writes overlay values into s through SetItem. Path keys,
// values that do not fit their field, values that could be read as a flag
// and unknown keys that could name a path are skipped and reported.
func ApplyOverlay(s *Store, overlay map[string]any) (applied []string, rejected []Rejection) {
	for k, v := range overlay {
		if err := checkOverlayItem(k, v); err != nil {
			rejected = append(rejected, Rejection{Key: k, Reason: err.Error()})
			continue
		}
		s.SetItem(k, v)
		applied = append(applied, k)
	}
	sort.Strings(applied)
	return applied, rejected
}

var extraKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

func checkOverlayItem(key string, value any) error {
	if isPathKey(key) {
		return errors.New("path parameters are set by the server")
	}
	if !IsKnownKey(key) {
		if !extraKeyPattern.MatchString(key) {
			return errors.New("unknown keys must be lower case letters, digits and underscores")
		}
		if isPathLike(key) {
			return errors.New("path parameters are set by the server")
		}
	}
	if flagLike(value) {
		return errors.New("values must not start with '-'")
	}
	return CheckValue(key, value)
}

// isPathLike matches keys such as temp_path or jobs_path
func isPathLike(key string) bool {
	return key == "path" || strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "_paths") ||
		strings.HasSuffix(key, "_dir") || strings.HasSuffix(key, "_file")
}

// flagLike reports whether value, or any string inside it, starts with '-'
func flagLike(value any) bool {
	switch v := value.(type) {
	case string:
		return strings.HasPrefix(v, "-")
	case []any:
		for _, e := range v {
			if flagLike(e) {
				return true
			}
		}
	case []string:
		for _, e := range v {
			if strings.HasPrefix(e, "-") {
				return true
			}
		}
	case map[string]any:
		for _, e := range v {
			if flagLike(e) {
				return true
			}
		}
	}
	return false
}

func isPathKey(key string) bool {
	for _, k := range PathKeys {
		if k == key {
			return true
		}
	}
	return false
}

// LoadDefaultsFile reads a YAML file of default overrides on top of base.
// Unknown keys are rejected so typos in the file surface at startup.
func LoadDefaultsFile(path string, base Params) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read defaults file: %w", err)
	}

	p := base.Clone()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}
		return base, fmt.Errorf("failed to parse defaults file %s: %w", path, err)
	}
	return p, nil
}
