// Package validate checks user-supplied form values against simple rules.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validatable pairs a value with the rules it must satisfy. Length rules only
// apply to string values and range rules only to int values.
type Validatable struct {
	Value     any
	Required  bool
	MinLength *int
	MaxLength *int
	Min       *int
	Max       *int
}

func Validate(v Validatable) bool {
	valid := true
	if v.Required {
		valid = valid && strings.TrimSpace(fmt.Sprint(v.Value)) != ""
	}
	if s, ok := v.Value.(string); ok {
		n := utf8.RuneCountInString(s)
		if v.MinLength != nil {
			valid = valid && n >= *v.MinLength
		}
		if v.MaxLength != nil {
			valid = valid && n <= *v.MaxLength
		}
	}
	if i, ok := v.Value.(int); ok {
		if v.Min != nil {
			valid = valid && i >= *v.Min
		}
		if v.Max != nil {
			valid = valid && i <= *v.Max
		}
	}
	return valid
}

// All reports whether every value is valid.
func All(vs ...Validatable) bool {
	for _, v := range vs {
		if !Validate(v) {
			return false
		}
	}
	return true
}
