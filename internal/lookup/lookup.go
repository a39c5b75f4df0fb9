// Package lookup serves the static school-district and community-alias
// tables. Both are embedded as YAML so the data can be edited without
// touching code.
package lookup

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed districts.yaml
var districtsYAML []byte

//go:embed aliases.yaml
var aliasesYAML []byte

type District struct {
	Name        string   `yaml:"name" json:"name"`
	Levels      []string `yaml:"levels" json:"levels"`
	Cities      []string `yaml:"cities" json:"cities"`
	Communities []string `yaml:"communities" json:"communities"`
}

type Tables struct {
	Districts []District
	Aliases   map[string]string
}

// Load decodes the embedded tables. It panics on malformed embedded data,
// which can only happen at build time.
func Load() *Tables {
	var d struct {
		Districts []District `yaml:"districts"`
	}
	if err := yaml.Unmarshal(districtsYAML, &d); err != nil {
		panic("lookup: bad districts.yaml: " + err.Error())
	}
	var a struct {
		Aliases map[string]string `yaml:"aliases"`
	}
	if err := yaml.Unmarshal(aliasesYAML, &a); err != nil {
		panic("lookup: bad aliases.yaml: " + err.Error())
	}
	return &Tables{Districts: d.Districts, Aliases: a.Aliases}
}

// ResolveCommunityAlias maps a community name through the alias table,
// case-insensitively. Unknown names come back unchanged; empty input yields
// the empty string.
func (t *Tables) ResolveCommunityAlias(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	if canonical, ok := t.Aliases[trimmed]; ok {
		return canonical
	}
	lower := strings.ToLower(trimmed)
	for alias, canonical := range t.Aliases {
		if strings.ToLower(alias) == lower {
			return canonical
		}
	}
	return trimmed
}

// DistrictsForCity returns every district serving the given city.
func (t *Tables) DistrictsForCity(city string) []District {
	var out []District
	for _, d := range t.Districts {
		for _, c := range d.Cities {
			if strings.EqualFold(c, city) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// CommunitiesForDistrict returns the communities a district covers, or nil
// when the district is unknown.
func (t *Tables) CommunitiesForDistrict(name string) []string {
	for _, d := range t.Districts {
		if strings.EqualFold(d.Name, name) {
			return d.Communities
		}
	}
	return nil
}
