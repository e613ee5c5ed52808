package config

const (
	// DefaultConfigFileName is looked up at the project root, in each date
	// directory, and in each group directory.
	DefaultConfigFileName = "framemill.toml"
	// DefaultDatabaseFileName is the progress database, relative to the
	// project root unless overridden.
	DefaultDatabaseFileName = "framemill.db"
	// DefaultLogFileName is the log file, relative to the project root
	// unless overridden.
	DefaultLogFileName = "framemill.log"

	defaultDateFormat          = "yyyy-mm-dd"
	defaultGroupOrdering       = OrderingABC
	defaultWorkers             = 20
	defaultMaxProcessingErrors = 5
)

// DefaultSettings returns the built-in option values at the bottom of the
// cascade.
func DefaultSettings() Settings {
	return Settings{
		DateFormat:    CoerceDateFormat(defaultDateFormat),
		GroupOrdering: defaultGroupOrdering,
		WhiteBalance: WhiteBalance{
			Red:    1.0,
			Green1: 1.0,
			Blue:   1.0,
			Green2: 1.0,
		},
		ChromaticAberration: ChromaticAberration{
			Red:  1.0,
			Blue: 1.0,
		},
		MedianFilter: 0,
	}
}
