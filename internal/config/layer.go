package config

// Level identifies which cascade position a configuration layer occupies.
type Level int

const (
	LevelGlobal Level = iota
	LevelDate
	LevelGroup
	LevelOverride
)

func (l Level) String() string {
	switch l {
	case LevelGlobal:
		return "global"
	case LevelDate:
		return "date"
	case LevelGroup:
		return "group"
	case LevelOverride:
		return "override"
	default:
		return "unknown"
	}
}

// WhiteBalanceLayer carries per-channel multipliers with nil meaning
// "not set at this level".
type WhiteBalanceLayer struct {
	Red    *float64 `toml:"red"`
	Green1 *float64 `toml:"green_1"`
	Blue   *float64 `toml:"blue"`
	Green2 *float64 `toml:"green_2"`
}

// ChromaticAberrationLayer carries per-channel multipliers with nil
// meaning "not set at this level".
type ChromaticAberrationLayer struct {
	Red  *float64 `toml:"red"`
	Blue *float64 `toml:"blue"`
}

// Layer is one level of the cascade: a single config file or the
// command-line overrides. Nil fields fall through to less specific
// layers, per option, when layers are merged into a Settings value.
type Layer struct {
	Source string
	Level  Level

	DateFormat    *string
	IncludeDates  []string
	ExcludeDates  []string
	IncludeGroups []string
	ExcludeGroups []string
	GroupOrdering *Ordering

	WhiteBalance        *WhiteBalanceLayer
	ChromaticAberration *ChromaticAberrationLayer
	MedianFilter        *int
	DarkFrame           *string
	ExcludePhotos       []string
}

// apply overlays this layer's set options onto s. White balance and
// chromatic aberration merge channel by channel so a layer can adjust a
// single multiplier without resetting the others.
func (l *Layer) apply(s *Settings) {
	if l == nil {
		return
	}
	if l.DateFormat != nil {
		s.DateFormat = CoerceDateFormat(*l.DateFormat)
	}
	if l.IncludeDates != nil {
		s.IncludeDates = append([]string(nil), l.IncludeDates...)
	}
	if l.ExcludeDates != nil {
		s.ExcludeDates = append([]string(nil), l.ExcludeDates...)
	}
	if l.IncludeGroups != nil {
		s.IncludeGroups = append([]string(nil), l.IncludeGroups...)
	}
	if l.ExcludeGroups != nil {
		s.ExcludeGroups = append([]string(nil), l.ExcludeGroups...)
	}
	if l.GroupOrdering != nil {
		s.GroupOrdering = *l.GroupOrdering
	}
	if wb := l.WhiteBalance; wb != nil {
		if wb.Red != nil {
			s.WhiteBalance.Red = *wb.Red
		}
		if wb.Green1 != nil {
			s.WhiteBalance.Green1 = *wb.Green1
		}
		if wb.Blue != nil {
			s.WhiteBalance.Blue = *wb.Blue
		}
		if wb.Green2 != nil {
			s.WhiteBalance.Green2 = *wb.Green2
		}
	}
	if ca := l.ChromaticAberration; ca != nil {
		if ca.Red != nil {
			s.ChromaticAberration.Red = *ca.Red
		}
		if ca.Blue != nil {
			s.ChromaticAberration.Blue = *ca.Blue
		}
	}
	if l.MedianFilter != nil {
		s.MedianFilter = *l.MedianFilter
	}
	if l.DarkFrame != nil {
		s.DarkFrame = *l.DarkFrame
	}
	if l.ExcludePhotos != nil {
		s.ExcludePhotos = append([]string(nil), l.ExcludePhotos...)
	}
}
