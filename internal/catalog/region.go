package catalog

import (
	"sort"
	"strings"
)

// RegionMap groups countries under region names for coarse geographic
// filtering. Lookups are case-insensitive on both the region and the country.
// A RegionMap is read-only once built.
type RegionMap struct {
	names     []string
	countries map[string][]string
	members   map[string]map[string]struct{}
}

func NewRegionMap(table map[string][]string) RegionMap {
	m := RegionMap{
		countries: make(map[string][]string, len(table)),
		members:   make(map[string]map[string]struct{}, len(table)),
	}
	for name, list := range table {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := normalize(name)
		if _, dup := m.members[key]; !dup {
			m.names = append(m.names, name)
			m.members[key] = make(map[string]struct{}, len(list))
		}
		set := m.members[key]
		for _, country := range list {
			country = normalize(country)
			if country == "" {
				continue
			}
			if _, seen := set[country]; seen {
				continue
			}
			set[country] = struct{}{}
			m.countries[key] = append(m.countries[key], country)
		}
	}
	sort.Strings(m.names)
	return m
}

// DefaultRegions returns the reference table.
func DefaultRegions() RegionMap {
	return NewRegionMap(map[string][]string{
		"Asia": {
			"CHINA", "JAPAN", "SOUTH KOREA", "KOREA", "INDIA", "SINGAPORE", "MALAYSIA",
			"THAILAND", "INDONESIA", "TAIWAN", "HONG KONG", "VIETNAM", "PHILIPPINES",
			"PAKISTAN", "BANGLADESH", "UAE", "UNITED ARAB EMIRATES", "SAUDI ARABIA",
			"QATAR", "TURKEY", "ISRAEL",
		},
		"Europe": {
			"UK", "UNITED KINGDOM", "GERMANY", "FRANCE", "NETHERLANDS", "SWEDEN",
			"NORWAY", "DENMARK", "FINLAND", "IRELAND", "ITALY", "SPAIN", "PORTUGAL",
			"BELGIUM", "SWITZERLAND", "AUSTRIA", "POLAND", "CZECH REPUBLIC", "HUNGARY",
			"GREECE",
		},
		"North America": {
			"USA", "US", "UNITED STATES", "CANADA", "MEXICO",
		},
		"Oceania": {
			"AUSTRALIA", "NEW ZEALAND", "FIJI",
		},
		"Africa": {
			"SOUTH AFRICA", "NIGERIA", "KENYA", "EGYPT", "GHANA", "MOROCCO",
			"ETHIOPIA", "RWANDA", "TANZANIA", "UGANDA",
		},
	})
}

// Names returns region names in alphabetical order.
func (m RegionMap) Names() []string {
	return append([]string(nil), m.names...)
}

// Countries returns the normalized members of region, or nil if it is unknown.
func (m RegionMap) Countries(region string) []string {
	return append([]string(nil), m.countries[normalize(region)]...)
}

func (m RegionMap) Has(region string) bool {
	_, ok := m.members[normalize(region)]
	return ok
}

// Contains reports whether country belongs to region. Unknown or empty
// regions contain nothing.
func (m RegionMap) Contains(region, country string) bool {
	set, ok := m.members[normalize(region)]
	if !ok {
		return false
	}
	_, ok = set[normalize(country)]
	return ok
}

func normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
