package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// layerFile mirrors the TOML schema shared by every cascade file. The full
// schema is decoded at every level so that options used at a disallowed
// level can be rejected by name rather than silently ignored.
type layerFile struct {
	// Root-only options.
	Database            *string `toml:"database"`
	Log                 *string `toml:"log"`
	Verbose             *bool   `toml:"verbose"`
	Quiet               *bool   `toml:"quiet"`
	Silent              *bool   `toml:"silent"`
	Workers             *int    `toml:"workers"`
	MaxProcessingErrors *int    `toml:"max_processing_errors"`
	Sample              *string `toml:"sample"`

	// Root-only scan options.
	DateFormat   *string  `toml:"date_format"`
	IncludeDates []string `toml:"include_dates"`
	ExcludeDates []string `toml:"exclude_dates"`

	// Root- and date-level options.
	IncludeGroups []string `toml:"include_groups"`
	ExcludeGroups []string `toml:"exclude_groups"`
	GroupOrdering *string  `toml:"group_ordering"`

	// Options permitted at every level.
	WhiteBalance        *WhiteBalanceLayer        `toml:"white_balance"`
	ChromaticAberration *ChromaticAberrationLayer `toml:"chromatic_aberration"`
	MedianFilter        *int                      `toml:"median_filter"`
	DarkFrame           *string                   `toml:"dark_frame"`
	ExcludePhotos       []string                  `toml:"exclude_photos"`
}

type restrictedOption struct {
	name     string
	maxLevel Level
	isSet    func(*layerFile) bool
}

var restrictedOptions = []restrictedOption{
	{"database", LevelGlobal, func(f *layerFile) bool { return f.Database != nil }},
	{"log", LevelGlobal, func(f *layerFile) bool { return f.Log != nil }},
	{"verbose", LevelGlobal, func(f *layerFile) bool { return f.Verbose != nil }},
	{"quiet", LevelGlobal, func(f *layerFile) bool { return f.Quiet != nil }},
	{"silent", LevelGlobal, func(f *layerFile) bool { return f.Silent != nil }},
	{"workers", LevelGlobal, func(f *layerFile) bool { return f.Workers != nil }},
	{"max_processing_errors", LevelGlobal, func(f *layerFile) bool { return f.MaxProcessingErrors != nil }},
	{"sample", LevelGlobal, func(f *layerFile) bool { return f.Sample != nil }},
	{"date_format", LevelGlobal, func(f *layerFile) bool { return f.DateFormat != nil }},
	{"include_dates", LevelGlobal, func(f *layerFile) bool { return f.IncludeDates != nil }},
	{"exclude_dates", LevelGlobal, func(f *layerFile) bool { return f.ExcludeDates != nil }},
	{"include_groups", LevelDate, func(f *layerFile) bool { return f.IncludeGroups != nil }},
	{"exclude_groups", LevelDate, func(f *layerFile) bool { return f.ExcludeGroups != nil }},
	{"group_ordering", LevelDate, func(f *layerFile) bool { return f.GroupOrdering != nil }},
}

// loadLayerFile parses one cascade file. A missing file is not an error;
// it simply contributes nothing, and (nil, nil) is returned.
func loadLayerFile(path string, level Level) (*Layer, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var parsed layerFile
	if err := toml.NewDecoder(file).Decode(&parsed); err != nil {
		return nil, &Error{File: path, Msg: fmt.Sprintf("parse: %v", err)}
	}

	return buildLayer(&parsed, path, level)
}

func buildLayer(parsed *layerFile, source string, level Level) (*Layer, error) {
	for _, opt := range restrictedOptions {
		if level > opt.maxLevel && level != LevelOverride && opt.isSet(parsed) {
			return nil, &Error{
				File:   source,
				Option: opt.name,
				Msg:    fmt.Sprintf("not allowed in a %s config file; set it at the %s level", level, opt.maxLevel),
			}
		}
	}

	layer := &Layer{
		Source:              source,
		Level:               level,
		DateFormat:          parsed.DateFormat,
		IncludeDates:        parsed.IncludeDates,
		ExcludeDates:        parsed.ExcludeDates,
		IncludeGroups:       parsed.IncludeGroups,
		ExcludeGroups:       parsed.ExcludeGroups,
		WhiteBalance:        parsed.WhiteBalance,
		ChromaticAberration: parsed.ChromaticAberration,
		MedianFilter:        parsed.MedianFilter,
		DarkFrame:           parsed.DarkFrame,
		ExcludePhotos:       parsed.ExcludePhotos,
	}

	if parsed.GroupOrdering != nil {
		ordering, ok := ParseOrdering(*parsed.GroupOrdering)
		if !ok {
			return nil, &Error{
				File:   source,
				Option: "group_ordering",
				Msg:    fmt.Sprintf("unknown value %q; expected abc, num, or natural", *parsed.GroupOrdering),
			}
		}
		layer.GroupOrdering = &ordering
	}

	if err := validateLayer(layer); err != nil {
		return nil, err
	}
	return layer, nil
}

// ExpandPath expands a leading tilde and returns an absolute, cleaned
// path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
