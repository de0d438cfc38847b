package ingest

// ZoneEntry maps a postal-code key ("2200" or "1000-2999") to a zone label.
type ZoneEntry struct {
	Key  string `yaml:"key" json:"key"`
	Zone string `yaml:"zone" json:"zone"`
}

// ZoneTable is an ordered zone configuration. Order is the match priority.
type ZoneTable []ZoneEntry

type zoneRule struct {
	rule PostalRule
	zone string
}

// ZoneMatcher resolves postal codes to zone labels. It is immutable and safe
// for concurrent use.
type ZoneMatcher struct {
	rules []zoneRule
}

// NewZoneMatcher compiles table. Entries with non-numeric bounds are skipped.
func NewZoneMatcher(table ZoneTable) *ZoneMatcher {
	rules := make([]zoneRule, 0, len(table))
	for _, entry := range table {
		rule, ok := ParsePostalRule(entry.Key)
		if !ok {
			continue
		}
		rules = append(rules, zoneRule{rule: rule, zone: entry.Zone})
	}
	return &ZoneMatcher{rules: rules}
}

// Match returns the zone of the first entry containing postalCode.
func (m *ZoneMatcher) Match(postalCode string) (string, bool) {
	if m == nil || postalCode == "" {
		return "", false
	}
	code, ok := ParsePostalCode(postalCode)
	if !ok {
		return "", false
	}
	for _, r := range m.rules {
		if r.rule.Contains(code) {
			return r.zone, true
		}
	}
	return "", false
}

// Len returns the number of usable entries.
func (m *ZoneMatcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}
