// Package skills holds the skill rule catalog: for every supported skill, the
// ordered list of joint angles to measure and the ideal range of each.
//
// A Catalog is built once at process start and never mutated afterwards, so
// it can be shared by any number of concurrent readers.
package skills

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"slices"
	"strconv"
)

// Angle bounds accepted for an ideal range.
const (
	minDegrees = 0.0
	maxDegrees = 180.0
)

// Skill levels.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var idPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// Range is a closed interval of angles in degrees.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether deg lies inside the range, bounds included.
func (r Range) Contains(deg float64) bool {
	return r.Min <= deg && deg <= r.Max
}

// String renders the range as "min-max", e.g. "175-180".
func (r Range) String() string {
	return strconv.FormatFloat(r.Min, 'f', -1, 64) + "-" + strconv.FormatFloat(r.Max, 'f', -1, 64)
}

// AngleCheck is one angle measured at Points[1] between the rays towards
// Points[0] and Points[2].
type AngleCheck struct {
	Name   string
	Points [3]Landmark
	Range  Range
}

// Skill is a bodyweight position and the angle checks that define good form.
type Skill struct {
	ID     string
	Name   string
	Family string
	Level  string
	Checks []AngleCheck
}

// Catalog maps skill ids to their definitions.
type Catalog struct {
	order  []string
	skills map[string]Skill
}

// Default returns the catalog embedded in the binary.
// It panics if the embedded data is invalid, which tests guard against.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded skill catalog: %v", err))
	}
	return c
}

// Lookup returns the skill with the given id.
func (c *Catalog) Lookup(id string) (Skill, bool) {
	s, ok := c.skills[id]
	if !ok {
		return Skill{}, false
	}
	s.Checks = slices.Clone(s.Checks)
	return s, true
}

// Skills returns every skill in catalog order.
func (c *Catalog) Skills() []Skill {
	out := make([]Skill, 0, len(c.order))
	for _, id := range c.order {
		s, _ := c.Lookup(id)
		out = append(out, s)
	}
	return out
}

// Len returns the number of skills in the catalog.
func (c *Catalog) Len() int { return len(c.order) }

// Next returns the skill that follows id in its family's progression.
func (c *Catalog) Next(id string) (Skill, bool) {
	cur, ok := c.skills[id]
	if !ok {
		return Skill{}, false
	}
	idx := slices.Index(c.order, id)
	for _, candidate := range c.order[idx+1:] {
		if c.skills[candidate].Family == cur.Family {
			return c.Lookup(candidate)
		}
	}
	return Skill{}, false
}

// Entry reports whether id opens its family's progression, which makes it
// available without passing an earlier skill.
func (c *Catalog) Entry(id string) bool {
	cur, ok := c.skills[id]
	if !ok {
		return false
	}
	for _, candidate := range c.order {
		if c.skills[candidate].Family == cur.Family {
			return candidate == id
		}
	}
	return false
}

// Load reads a catalog from a YAML file at path.
func Load(_ context.Context, path string) (*Catalog, error) {
	k, err := newKoanf(fileSource(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, path, err)
	}
	return decode(k)
}

// Parse builds a catalog from YAML data.
func Parse(data []byte) (*Catalog, error) {
	k, err := newKoanf(bytesSource(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	return decode(k)
}

func build(doc catalogDoc) (*Catalog, error) {
	if len(doc.Skills) == 0 {
		return nil, fmt.Errorf("%w: no skills defined", ErrInvalidCatalog)
	}
	c := &Catalog{skills: make(map[string]Skill, len(doc.Skills))}
	for i, raw := range doc.Skills {
		s, err := raw.toSkill()
		if err != nil {
			return nil, fmt.Errorf("%w: skill #%d: %w", ErrInvalidCatalog, i, err)
		}
		if _, dup := c.skills[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate skill id %q", ErrInvalidCatalog, s.ID)
		}
		c.skills[s.ID] = s
		c.order = append(c.order, s.ID)
	}
	return c, nil
}
