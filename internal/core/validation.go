package core

// validation.go checks that an upload's header carries the customer layout.
//
// Header names are compared after normalization: case, surrounding quotes,
// Excel formula prefixes and the separators '_', '-' and ' ' are ignored, so
// "Company Name", "companyName" and "company_name" all name the same column.
// Only column presence is validated; cell contents are stored as supplied.

import "strings"

// ValidateHeaders verifies every required column is present in t.
// The SchemaViolation lists all missing columns, not just the first.
func ValidateHeaders(t *Table) error {
	if t.index == nil {
		t.index = MakeHeaderIndex(t.Header)
	}
	if missing := missingColumns(t.index, RequiredFields()); len(missing) > 0 {
		return schemaViolation(missing)
	}
	return nil
}

// missingColumns returns the required names absent from idx, in the order given.
func missingColumns(idx HeaderIndex, required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := idx[normalizeHeader(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// When a name repeats, the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// normalizeHeader reduces a header cell to its comparison key.
func normalizeHeader(s string) string {
	s = strings.ToLower(CleanCell(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ', '\t':
			return -1
		}
		return r
	}, s)
}

// CleanCell removes common spreadsheet export artifacts from a header cell:
// surrounding whitespace, the Excel formula prefix (="...") and quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
