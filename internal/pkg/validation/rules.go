package validation

import (
	"regexp"
	"strings"
)

// Validation rule patterns
var (
	// Student number pattern - 8 to 10 digits
	StudentNumberPattern = `^\d{8,10}$`

	// Section is free text printed on the applicant's class card
	SectionMaxLength = 32

	// Interview times are HH:MM on a 24-hour clock
	ClockPattern = `^([01]\d|2[0-3]):[0-5]\d$`
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	StudentNumber *regexp.Regexp
	Clock         *regexp.Regexp
}{
	StudentNumber: regexp.MustCompile(StudentNumberPattern),
	Clock:         regexp.MustCompile(ClockPattern),
}

// StringValidation validates a single string value
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}

	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}

	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}

// ValidStudentNumber reports whether s is an 8-10 digit student number
func ValidStudentNumber(s string) bool {
	return NewStringValidation(s).WithPattern(CompiledPatterns.StudentNumber).Validate()
}

// ValidSection reports whether s is a non-empty section of at most SectionMaxLength bytes
func ValidSection(s string) bool {
	return NewStringValidation(s).WithMaxLength(SectionMaxLength).Validate()
}

// ValidTimeRange reports whether start and end are HH:MM clock times with start before end
func ValidTimeRange(start, end string) bool {
	for _, t := range []string{start, end} {
		if !NewStringValidation(t).WithPattern(CompiledPatterns.Clock).Validate() {
			return false
		}
	}
	// zero-padded HH:MM compares lexically
	return start < end
}
