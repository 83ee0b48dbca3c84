package core

import (
	"fmt"
	"regexp"
)

// Search decides whether a completed record is handed to the handler.
type Search struct {
	re    *regexp.Regexp // nil when no pattern was given
	field string
}

// CompileSearch compiles pattern for matching against field. An empty pattern
// only requires the field to be present. An empty field designates the
// decoder's header label.
func CompileSearch(pattern, field string) (*Search, error) {
	s := &Search{field: field}
	if pattern == "" {
		return s, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	s.re = re
	return s, nil
}

// Field returns the label the search applies to.
func (s *Search) Field() string { return s.field }

// Pattern returns the source pattern, or "" when none was set.
func (s *Search) Pattern() string {
	if s.re == nil {
		return ""
	}
	return s.re.String()
}

// Match reports whether rec passes the search.
func (s *Search) Match(rec *Record) bool {
	v, ok := rec.Get(s.field)
	return matchValue(s.re, v, ok)
}

// Matches reports whether a field value passes pattern. present reports
// whether the field was set on the record at all.
func Matches(pattern string, v Value, present bool) (bool, error) {
	s, err := CompileSearch(pattern, "")
	if err != nil {
		return false, err
	}
	return matchValue(s.re, v, present), nil
}

func matchValue(re *regexp.Regexp, v Value, present bool) bool {
	if !present {
		return false
	}
	if re == nil {
		return true
	}
	for _, item := range v.Strings() {
		if re.MatchString(item) {
			return true
		}
	}
	return false
}
