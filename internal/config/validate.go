package config

import (
	"fmt"
	"strings"
)

func validateLayer(l *Layer) error {
	if wb := l.WhiteBalance; wb != nil {
		for name, v := range map[string]*float64{
			"red": wb.Red, "green_1": wb.Green1, "blue": wb.Blue, "green_2": wb.Green2,
		} {
			if v != nil && *v < 0 {
				return &Error{
					File:   l.Source,
					Option: "white_balance." + name,
					Msg:    fmt.Sprintf("multiplier must be non-negative, got %g", *v),
				}
			}
		}
	}
	if ca := l.ChromaticAberration; ca != nil {
		for name, v := range map[string]*float64{"red": ca.Red, "blue": ca.Blue} {
			if v != nil && *v < 0 {
				return &Error{
					File:   l.Source,
					Option: "chromatic_aberration." + name,
					Msg:    fmt.Sprintf("multiplier must be non-negative, got %g", *v),
				}
			}
		}
	}
	if l.MedianFilter != nil && *l.MedianFilter < 0 {
		return &Error{
			File:   l.Source,
			Option: "median_filter",
			Msg:    fmt.Sprintf("pass count must be non-negative, got %d", *l.MedianFilter),
		}
	}
	for _, ref := range l.IncludeGroups {
		if err := validateGroupRef(l, "include_groups", ref); err != nil {
			return err
		}
	}
	for _, ref := range l.ExcludeGroups {
		if err := validateGroupRef(l, "exclude_groups", ref); err != nil {
			return err
		}
	}
	return nil
}

// validateGroupRef checks the shape of a group reference. Global-level
// files must qualify groups with a date ("2024-01-05/a"); date-level
// files name groups bare.
func validateGroupRef(l *Layer, option, ref string) error {
	if ref == "" {
		return &Error{File: l.Source, Option: option, Msg: "empty group reference"}
	}
	qualified := strings.Contains(ref, "/")
	switch l.Level {
	case LevelGlobal:
		if !qualified {
			return &Error{
				File:   l.Source,
				Option: option,
				Msg:    fmt.Sprintf("group reference %q must include a date, e.g. %q", ref, "2024-01-05/"+ref),
			}
		}
		if strings.Count(ref, "/") > 1 {
			return &Error{
				File:   l.Source,
				Option: option,
				Msg:    fmt.Sprintf("group reference %q has too many path segments", ref),
			}
		}
	case LevelDate:
		if qualified {
			return &Error{
				File:   l.Source,
				Option: option,
				Msg:    fmt.Sprintf("group reference %q must be a bare group name inside a date config", ref),
			}
		}
	}
	return nil
}
