package helpers

// NullableString maps an empty string to a SQL NULL
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue returns the pointed-to string or an empty one for NULL
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
