package skills

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type catalogDoc struct {
	Skills []skillDoc `koanf:"skills"`
}

type skillDoc struct {
	ID     string     `koanf:"id"`
	Name   string     `koanf:"name"`
	Family string     `koanf:"family"`
	Level  string     `koanf:"level"`
	Checks []checkDoc `koanf:"checks"`
}

type checkDoc struct {
	Name   string   `koanf:"name"`
	Points []string `koanf:"points"`
	Min    float64  `koanf:"min"`
	Max    float64  `koanf:"max"`
}

// bytesSource feeds raw YAML to koanf.
type bytesSource []byte

func (b bytesSource) ReadBytes() ([]byte, error) { return b, nil }

func (b bytesSource) Read() (map[string]interface{}, error) {
	return nil, errors.New("bytes source does not support Read")
}

func fileSource(path string) koanf.Provider { return file.Provider(path) }

func newKoanf(p koanf.Provider) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(p, yaml.Parser()); err != nil {
		return nil, err
	}
	return k, nil
}

func decode(k *koanf.Koanf) (*Catalog, error) {
	var doc catalogDoc
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	return build(doc)
}

func (d skillDoc) toSkill() (Skill, error) {
	id := strings.TrimSpace(d.ID)
	if !idPattern.MatchString(id) {
		return Skill{}, fmt.Errorf("id %q must be lowercase and underscore separated", d.ID)
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = id
	}
	level := strings.ToLower(strings.TrimSpace(d.Level))
	switch level {
	case "":
		level = LevelBeginner
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		return Skill{}, fmt.Errorf("%s: unknown level %q", id, d.Level)
	}
	family := strings.TrimSpace(d.Family)
	if family == "" {
		family = id
	}
	if len(d.Checks) == 0 {
		return Skill{}, fmt.Errorf("%s: no angle checks", id)
	}

	s := Skill{ID: id, Name: name, Family: family, Level: level, Checks: make([]AngleCheck, 0, len(d.Checks))}
	seen := make(map[string]struct{}, len(d.Checks))
	for _, cd := range d.Checks {
		check, err := cd.toCheck()
		if err != nil {
			return Skill{}, fmt.Errorf("%s: %w", id, err)
		}
		if _, dup := seen[check.Name]; dup {
			return Skill{}, fmt.Errorf("%s: duplicate check name %q", id, check.Name)
		}
		seen[check.Name] = struct{}{}
		s.Checks = append(s.Checks, check)
	}
	return s, nil
}

func (d checkDoc) toCheck() (AngleCheck, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return AngleCheck{}, errors.New("check without name")
	}
	if len(d.Points) != 3 {
		return AngleCheck{}, fmt.Errorf("check %q: want 3 points, got %d", name, len(d.Points))
	}
	var pts [3]Landmark
	for i, p := range d.Points {
		l := Landmark(strings.ToUpper(strings.TrimSpace(p)))
		if !l.Known() {
			return AngleCheck{}, fmt.Errorf("check %q: unknown landmark %q", name, p)
		}
		pts[i] = l
	}
	if d.Min < minDegrees || d.Max > maxDegrees || d.Min > d.Max {
		return AngleCheck{}, fmt.Errorf("check %q: range [%g, %g] outside [0, 180] or inverted", name, d.Min, d.Max)
	}
	return AngleCheck{Name: name, Points: pts, Range: Range{Min: d.Min, Max: d.Max}}, nil
}
