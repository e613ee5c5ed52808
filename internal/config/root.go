package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Root holds the options only the project root file or the command line
// may set, plus the loaded global layer used to seed the cascade.
type Root struct {
	// Project is the absolute path of the project tree.
	Project string
	// ConfigName is the file name looked up at every cascade level.
	ConfigName string
	// ConfigPath is the absolute path of the root config file, whether or
	// not it exists.
	ConfigPath string

	Database string
	LogFile  string

	Verbose bool
	Quiet   bool
	Silent  bool

	Workers             int
	MaxProcessingErrors int
	Sample              SampleSpec

	global   *Layer
	override *Layer
}

// RootOverrides carries command-line values. Nil fields were not given on
// the command line and fall through to the root config file, then to the
// defaults. Scan holds scan-option overrides applied above every cascade
// level.
type RootOverrides struct {
	Config              string
	Database            *string
	LogFile             *string
	Verbose             *bool
	Quiet               *bool
	Silent              *bool
	Workers             *int
	MaxProcessingErrors *int
	Sample              *string

	Scan *Layer
}

// LoadRoot resolves the project directory, reads the root config file if
// present, and merges the command-line overrides on top.
func LoadRoot(project string, ov RootOverrides) (*Root, error) {
	projectDir, err := ExpandPath(project)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(projectDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project directory %s does not exist", projectDir)
		}
		return nil, fmt.Errorf("stat project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %s is not a directory", projectDir)
	}

	configPath := filepath.Join(projectDir, DefaultConfigFileName)
	configName := DefaultConfigFileName
	if ov.Config != "" {
		configPath, err = ExpandPath(ov.Config)
		if err != nil {
			return nil, err
		}
		configName = filepath.Base(configPath)
	}

	parsed, err := readRootFile(configPath)
	if err != nil {
		return nil, err
	}

	root := &Root{
		Project:             projectDir,
		ConfigName:          configName,
		ConfigPath:          configPath,
		Database:            filepath.Join(projectDir, DefaultDatabaseFileName),
		LogFile:             filepath.Join(projectDir, DefaultLogFileName),
		Workers:             defaultWorkers,
		MaxProcessingErrors: defaultMaxProcessingErrors,
	}

	if err := root.applyFile(parsed, configPath); err != nil {
		return nil, err
	}
	if err := root.applyOverrides(ov); err != nil {
		return nil, err
	}

	global, err := buildLayer(orEmpty(parsed), configPath, LevelGlobal)
	if err != nil {
		return nil, err
	}
	root.global = global
	root.override = ov.Scan

	if err := root.validate(); err != nil {
		return nil, err
	}
	return root, nil
}

// NewResolver returns a cascade resolver seeded with this root's global
// layer and command-line scan overrides.
func (r *Root) NewResolver() *Resolver {
	return NewResolver(r.Project, r.ConfigName, r.global, r.override)
}

// GlobalSettings resolves the cascade with no date or group layer.
func (r *Root) GlobalSettings() (Settings, error) {
	return r.NewResolver().Resolve("", "")
}

func readRootFile(path string) (*layerFile, error) {
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
	return &parsed, nil
}

func (r *Root) applyFile(parsed *layerFile, path string) error {
	if parsed == nil {
		return nil
	}
	if parsed.Database != nil {
		expanded, err := ExpandPath(*parsed.Database)
		if err != nil {
			return err
		}
		r.Database = expanded
	}
	if parsed.Log != nil {
		expanded, err := ExpandPath(*parsed.Log)
		if err != nil {
			return err
		}
		r.LogFile = expanded
	}
	if parsed.Verbose != nil {
		r.Verbose = *parsed.Verbose
	}
	if parsed.Quiet != nil {
		r.Quiet = *parsed.Quiet
	}
	if parsed.Silent != nil {
		r.Silent = *parsed.Silent
	}
	if parsed.Workers != nil {
		r.Workers = *parsed.Workers
	}
	if parsed.MaxProcessingErrors != nil {
		r.MaxProcessingErrors = *parsed.MaxProcessingErrors
	}
	if parsed.Sample != nil {
		spec, err := ParseSampleSpec(*parsed.Sample)
		if err != nil {
			return &Error{File: path, Option: "sample", Msg: err.Error()}
		}
		r.Sample = spec
	}
	return nil
}

func (r *Root) applyOverrides(ov RootOverrides) error {
	if ov.Database != nil {
		expanded, err := ExpandPath(*ov.Database)
		if err != nil {
			return err
		}
		r.Database = expanded
	}
	if ov.LogFile != nil {
		expanded, err := ExpandPath(*ov.LogFile)
		if err != nil {
			return err
		}
		r.LogFile = expanded
	}
	if ov.Verbose != nil {
		r.Verbose = *ov.Verbose
	}
	if ov.Quiet != nil {
		r.Quiet = *ov.Quiet
	}
	if ov.Silent != nil {
		r.Silent = *ov.Silent
	}
	if ov.Workers != nil {
		r.Workers = *ov.Workers
	}
	if ov.MaxProcessingErrors != nil {
		r.MaxProcessingErrors = *ov.MaxProcessingErrors
	}
	if ov.Sample != nil {
		spec, err := ParseSampleSpec(*ov.Sample)
		if err != nil {
			return &Error{Option: "sample", Msg: err.Error()}
		}
		r.Sample = spec
	}
	return nil
}

func (r *Root) validate() error {
	count := 0
	for _, set := range []bool{r.Verbose, r.Quiet, r.Silent} {
		if set {
			count++
		}
	}
	if count > 1 {
		return &Error{Msg: "verbose, quiet, and silent are mutually exclusive"}
	}
	if r.Workers < 1 {
		return &Error{Option: "workers", Msg: fmt.Sprintf("must be at least 1, got %d", r.Workers)}
	}
	if r.MaxProcessingErrors < 0 {
		return &Error{
			Option: "max_processing_errors",
			Msg:    fmt.Sprintf("must be non-negative, got %d", r.MaxProcessingErrors),
		}
	}
	return nil
}

func orEmpty(parsed *layerFile) *layerFile {
	if parsed == nil {
		return &layerFile{}
	}
	return parsed
}
