package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"framemill/internal/config"
	"framemill/internal/logging"
)

// Photo identifies one photo file inside the project tree.
type Photo struct {
	Date  string
	Group string
	Name  string
	Path  string
}

// Identity returns the "date/group/name" form used in logs and error
// messages.
func (p Photo) Identity() string {
	return p.Date + "/" + p.Group + "/" + p.Name
}

// Scanner enumerates the photos of a project tree. Dates are always
// visited chronologically and groups in policy order; Ordered
// additionally sorts photo names within each group so the full listing is
// deterministic.
type Scanner struct {
	projectDir string
	configName string
	resolver   *config.Resolver
	ordered    bool
	logger     *slog.Logger
}

// NewScanner builds a scanner over projectDir using the resolver's
// cascade for date formats, ordering policies, and exclusions.
func NewScanner(projectDir, configName string, resolver *config.Resolver, ordered bool, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		projectDir: projectDir,
		configName: configName,
		resolver:   resolver,
		ordered:    ordered,
		logger:     logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan walks the tree and returns every photo that survives the
// configured filters. Configuration errors in any cascade file abort the
// scan.
func (s *Scanner) Scan(ctx context.Context) ([]Photo, error) {
	global, err := s.resolver.Resolve("", "")
	if err != nil {
		return nil, err
	}

	dates, err := s.scanDates(global)
	if err != nil {
		return nil, err
	}

	var photos []Photo
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		datePhotos, err := s.scanDate(date)
		if err != nil {
			return nil, err
		}
		photos = append(photos, datePhotos...)
	}

	s.logger.Info("scan complete",
		logging.Int("dates", len(dates)),
		logging.Int("photos", len(photos)))
	return photos, nil
}

// scanDates lists the date directories in chronological order.
func (s *Scanner) scanDates(global config.Settings) ([]string, error) {
	entries, err := os.ReadDir(s.projectDir)
	if err != nil {
		return nil, fmt.Errorf("read project directory: %w", err)
	}

	excluded := make(map[string]struct{})
	for _, date := range global.ExcludedDates() {
		excluded[date] = struct{}{}
	}

	type datedName struct {
		name string
		when time.Time
	}
	var dates []datedName
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		when, ok := config.ParseDate(entry.Name(), global.DateFormat)
		if !ok {
			s.logger.Debug("skipping non-date directory", logging.String(logging.FieldDate, entry.Name()))
			continue
		}
		if _, skip := excluded[entry.Name()]; skip {
			s.logger.Debug("date excluded by config", logging.String(logging.FieldDate, entry.Name()))
			continue
		}
		dates = append(dates, datedName{name: entry.Name(), when: when})
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].when.Before(dates[j].when) })

	names := make([]string, len(dates))
	for i, d := range dates {
		names[i] = d.name
	}
	return names, nil
}

func (s *Scanner) scanDate(date string) ([]Photo, error) {
	settings, err := s.resolver.Resolve(date, "")
	if err != nil {
		return nil, err
	}

	// An unreadable subtree is skipped, not fatal for the whole scan.
	entries, err := os.ReadDir(filepath.Join(s.projectDir, date))
	if err != nil {
		s.logger.Warn("date directory unreadable, skipping",
			logging.String(logging.FieldDate, date),
			logging.Error(err))
		return nil, nil
	}

	excluded := make(map[string]struct{})
	for _, group := range settings.ExcludedGroups(date) {
		excluded[group] = struct{}{}
	}

	var groups []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !qualifies(entry.Name(), settings.GroupOrdering) {
			s.logger.Debug("group does not qualify under ordering policy",
				logging.String(logging.FieldDate, date),
				logging.String(logging.FieldGroup, entry.Name()),
				logging.String("ordering", string(settings.GroupOrdering)))
			continue
		}
		if _, skip := excluded[entry.Name()]; skip {
			s.logger.Debug("group excluded by config",
				logging.String(logging.FieldDate, date),
				logging.String(logging.FieldGroup, entry.Name()))
			continue
		}
		groups = append(groups, entry.Name())
	}
	sortGroups(groups, settings.GroupOrdering)

	var photos []Photo
	for _, group := range groups {
		groupPhotos, err := s.scanGroup(date, group)
		if err != nil {
			return nil, err
		}
		photos = append(photos, groupPhotos...)
	}
	return photos, nil
}

func (s *Scanner) scanGroup(date, group string) ([]Photo, error) {
	settings, err := s.resolver.Resolve(date, group)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.projectDir, date, group)
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("group directory unreadable, skipping",
			logging.String(logging.FieldDate, date),
			logging.String(logging.FieldGroup, group),
			logging.Error(err))
		return nil, nil
	}

	excluded := make(map[string]struct{})
	for _, name := range settings.ExcludePhotos {
		excluded[name] = struct{}{}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.Name() == s.configName {
			continue
		}
		if isDevelopedOutput(entry.Name()) {
			continue
		}
		if _, skip := excluded[entry.Name()]; skip {
			s.logger.Debug("photo excluded by config",
				logging.String(logging.FieldDate, date),
				logging.String(logging.FieldGroup, group),
				logging.String(logging.FieldPhoto, entry.Name()))
			continue
		}
		names = append(names, entry.Name())
	}
	if s.ordered {
		sort.Strings(names)
	}

	photos := make([]Photo, len(names))
	for i, name := range names {
		photos[i] = Photo{Date: date, Group: group, Name: name, Path: filepath.Join(dir, name)}
	}
	return photos, nil
}

// isDevelopedOutput reports whether a file is a converter output living
// next to its raw source; those never re-enter the pipeline.
func isDevelopedOutput(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tiff", ".tif":
		return true
	}
	return false
}
