package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	staveerrors "github.com/tessro/stave/internal/errors"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
)

var settable = map[string]valueKind{
	"session.file":         kindString,
	"session.quantize":     kindBool,
	"session.max_undo":     kindInt,
	"session.debounce":     kindInt,
	"tempo.bpm":            kindFloat,
	"keyboard.octave":      kindInt,
	"midi.input":           kindString,
	"midi.output":          kindString,
	"midi.channel":         kindInt,
	"midi.velocity":        kindInt,
	"server.addr":          kindString,
	"tui.theme":            kindString,
	"tui.refresh_interval": kindInt,
	"log.level":            kindString,
	"log.file":             kindString,
}

// Keys returns the keys accepted by Set, sorted.
func Keys() []string {
	keys := make([]string, 0, len(settable))
	for k := range settable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set rewrites a single "section.key" value in the TOML file at path.
// Other keys in the file are preserved. The result must validate.
func Set(path, key, value string) error {
	kind, ok := settable[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", staveerrors.ErrInvalidConfig, key)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", staveerrors.ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]interface{}{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return fmt.Errorf("%w: %v", staveerrors.ErrInvalidConfig, err)
	}

	section, field, _ := strings.Cut(key, ".")
	sectionMap, ok := raw[section].(map[string]interface{})
	if !ok {
		sectionMap = make(map[string]interface{})
		raw[section] = sectionMap
	}

	typed, err := convert(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", staveerrors.ErrInvalidConfig, key, err)
	}
	sectionMap[field] = typed

	var buf bytes.Buffer
	_, _ = fmt.Fprintln(&buf, "# Stave Configuration")
	_, _ = fmt.Fprintln(&buf, "")
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = "  "
	if err := encoder.Encode(raw); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	var check Config
	if _, err := toml.Decode(buf.String(), &check); err != nil {
		return fmt.Errorf("%w: %v", staveerrors.ErrInvalidConfig, err)
	}
	if err := check.Validate(); err != nil {
		return fmt.Errorf("%w: %v", staveerrors.ErrInvalidConfig, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func convert(kind valueKind, value string) (interface{}, error) {
	switch kind {
	case kindInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer")
		}
		return int64(i), nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("value must be a number")
		}
		return f, nil
	case kindBool:
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
		return nil, fmt.Errorf("value must be true or false")
	default:
		return value, nil
	}
}
