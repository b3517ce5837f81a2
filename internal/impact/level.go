// Package impact defines the ordered severity levels used to classify findings.
package impact

import (
	"fmt"
	"strings"
)

// Level is a deployment-impact severity. Levels form a total order:
// None < Low < Medium < High < Critical.
type Level int

const (
	None Level = iota
	Low
	Medium
	High
	Critical
)

var levelNames = [...]string{"none", "low", "medium", "high", "critical"}

// ParseLevel converts a level name to a Level. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, candidate := range levelNames {
		if name == candidate {
			return Level(i), nil
		}
	}
	return None, fmt.Errorf("unknown impact level %q: must be one of %s",
		s, strings.Join(levelNames[:], ", "))
}

func (l Level) String() string {
	if l < None || l > Critical {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Max returns the higher of two levels.
func Max(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}

// MarshalText implements encoding.TextMarshaler so levels serialize as their
// names in JSON and YAML.
func (l Level) MarshalText() ([]byte, error) {
	if l < None || l > Critical {
		return nil, fmt.Errorf("cannot marshal invalid impact level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler. yaml.v3 does not consult the text
// marshaler interfaces, so levels need explicit YAML hooks.
func (l Level) MarshalYAML() (any, error) {
	if l < None || l > Critical {
		return nil, fmt.Errorf("cannot marshal invalid impact level %d", int(l))
	}
	return levelNames[l], nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Level) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseLevel(name)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
