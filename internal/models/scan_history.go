package models

// ScanHistoryEntry is one completed triage analysis. ID is the creation time in
// milliseconds and doubles as the sort and uniqueness key.
type ScanHistoryEntry struct {
	ID     int64     `json:"id"`
	Date   string    `json:"date"`
	URI    string    `json:"uri"`
	Result ResultBag `json:"result"`
	Base64 string    `json:"base64"`
}

// ResultBag is the open-schema object returned by the inference collaborator.
type ResultBag map[string]any

// String returns the string value at key, or "" when missing or not a string.
func (b ResultBag) String(key string) string {
	v, ok := b[key].(string)
	if !ok {
		return ""
	}
	return v
}

// Strings returns the string items of the array at key. A bare string is
// returned as a one-element slice; non-string items are skipped.
func (b ResultBag) Strings(key string) []string {
	switch v := b[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}
