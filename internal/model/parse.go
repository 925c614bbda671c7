package model

import (
	"fmt"
	"strings"
)

// ParseLevel resolves a level name (case-insensitive) to its LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for level, levelName := range levelNames {
		if levelName == upper {
			return level, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// ParseState resolves a state name (case-insensitive) to its ComponentState.
func ParseState(name string) (ComponentState, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for state, stateName := range stateNames {
		if stateName == upper {
			return state, nil
		}
	}
	return StateInactive, fmt.Errorf("unknown component state %q", name)
}

// ParseCategory resolves a category name (case-insensitive) to its LogCategory.
func ParseCategory(name string) (LogCategory, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for category, categoryName := range categoryNames {
		if categoryName == lower {
			return category, nil
		}
	}
	return CategorySystem, fmt.Errorf("unknown log category %q", name)
}
