package config

import (
	"path/filepath"
	"sync"
)

// Resolver walks the cascade for a project tree: built-in defaults, the
// project root file, per-date files, per-group files, then command-line
// overrides. Layers are loaded once and cached; resolved Settings are
// cached per (date, group).
type Resolver struct {
	projectDir string
	configName string
	global     *Layer
	override   *Layer

	mu       sync.Mutex
	dates    map[string]*Layer
	groups   map[string]*Layer
	resolved map[string]Settings
}

// NewResolver builds a resolver rooted at projectDir. The global layer is
// the already-loaded project root file (nil when absent); override is the
// command-line layer (nil when no scan options were given).
func NewResolver(projectDir, configName string, global, override *Layer) *Resolver {
	return &Resolver{
		projectDir: projectDir,
		configName: configName,
		global:     global,
		override:   override,
		dates:      make(map[string]*Layer),
		groups:     make(map[string]*Layer),
		resolved:   make(map[string]Settings),
	}
}

// Resolve returns the effective settings for a group within a date. An
// empty group resolves date-level settings, used when deciding group
// ordering and exclusions for the date; an empty date resolves the global
// settings.
func (r *Resolver) Resolve(date, group string) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := date + "\x00" + group
	if s, ok := r.resolved[key]; ok {
		return s, nil
	}

	s := DefaultSettings()
	r.global.apply(&s)

	if date != "" {
		dateLayer, err := r.dateLayerLocked(date)
		if err != nil {
			return Settings{}, err
		}
		dateLayer.apply(&s)

		if group != "" {
			groupLayer, err := r.groupLayerLocked(date, group)
			if err != nil {
				return Settings{}, err
			}
			groupLayer.apply(&s)
		}
	}

	r.override.apply(&s)

	r.resolved[key] = s
	return s, nil
}

func (r *Resolver) dateLayerLocked(date string) (*Layer, error) {
	if layer, ok := r.dates[date]; ok {
		return layer, nil
	}
	path := filepath.Join(r.projectDir, date, r.configName)
	layer, err := loadLayerFile(path, LevelDate)
	if err != nil {
		return nil, err
	}
	qualifyGroupRefs(layer, date)
	r.dates[date] = layer
	return layer, nil
}

func (r *Resolver) groupLayerLocked(date, group string) (*Layer, error) {
	key := date + "\x00" + group
	if layer, ok := r.groups[key]; ok {
		return layer, nil
	}
	path := filepath.Join(r.projectDir, date, group, r.configName)
	layer, err := loadLayerFile(path, LevelGroup)
	if err != nil {
		return nil, err
	}
	r.groups[key] = layer
	return layer, nil
}

// qualifyGroupRefs rewrites the bare group names of a date-level layer
// into the "date/group" form the resolved Settings use throughout.
func qualifyGroupRefs(layer *Layer, date string) {
	if layer == nil {
		return
	}
	for i, ref := range layer.IncludeGroups {
		layer.IncludeGroups[i] = date + "/" + ref
	}
	for i, ref := range layer.ExcludeGroups {
		layer.ExcludeGroups[i] = date + "/" + ref
	}
}
