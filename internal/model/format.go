package model

import "fmt"

// ExportFormat names a CSV column schema and row-fanout policy. The legacy
// variants exist for installations still feeding pre-v3 downstream imports.
type ExportFormat string

const (
	// Order formats.
	FormatDefault             ExportFormat = "default"
	FormatImport              ExportFormat = "import"
	FormatLegacyOneRowPerItem ExportFormat = "legacy_one_row_per_item"
	FormatLegacySingleColumn  ExportFormat = "legacy_single_column"

	// Customer formats. FormatDefault and FormatImport are shared.
	FormatLegacy ExportFormat = "legacy"
)

// ValidFor reports whether the format applies to the given record kind.
func (f ExportFormat) ValidFor(kind RecordKind) bool {
	switch kind {
	case KindOrder:
		switch f {
		case FormatDefault, FormatImport, FormatLegacyOneRowPerItem, FormatLegacySingleColumn:
			return true
		}
	case KindCustomer:
		switch f {
		case FormatDefault, FormatImport, FormatLegacy:
			return true
		}
	}
	return false
}

// ParseExportFormat validates a format slug against a record kind.
func ParseExportFormat(s string, kind RecordKind) (ExportFormat, error) {
	f := ExportFormat(s)
	if !f.ValidFor(kind) {
		return "", fmt.Errorf("invalid %s export format: %q", kind, s)
	}
	return f, nil
}
