package ingest

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadZoneTable reads a zone table file. A missing file yields an empty table
// and os.ErrNotExist so callers can warn and continue.
func LoadZoneTable(path string) (ZoneTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ZoneTable{}, err
		}
		return nil, fmt.Errorf("read zone table: %w", err)
	}
	return ParseZoneTable(data)
}

// ParseZoneTable decodes either a mapping ("1000-2999": CPH) or a sequence of
// {key, zone} entries. Mapping order in the document is preserved.
func ParseZoneTable(data []byte) (ZoneTable, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse zone table: %w", err)
	}
	if len(doc.Content) == 0 {
		return ZoneTable{}, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		table := make(ZoneTable, 0, len(root.Content)/2)
		for i := 0; i+1 < len(root.Content); i += 2 {
			key, value := root.Content[i], root.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("parse zone table: zone for %q must be a scalar (line %d)", key.Value, value.Line)
			}
			table = append(table, ZoneEntry{Key: key.Value, Zone: value.Value})
		}
		return table, nil
	case yaml.SequenceNode:
		var table ZoneTable
		if err := root.Decode(&table); err != nil {
			return nil, fmt.Errorf("parse zone table: %w", err)
		}
		return table, nil
	default:
		return nil, fmt.Errorf("parse zone table: unexpected document kind at line %d", root.Line)
	}
}
