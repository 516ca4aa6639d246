// Package core provides filtering of stack snapshots.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/toaststack/internal/model"
	"github.com/jmylchreest/toaststack/internal/stack"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // Field name: stack, surface, position, title, text, index, x, y, progress, age
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	// Cached parsed values
	regex    *regexp.Regexp
	intVal   int
	position model.Position
	age      time.Duration
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition

	now func() time.Time
}

// ParseDuration parses a duration string with extended formats.
// Supports: 90s, 5m, 48h, 7d, 1w, 0
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: stack, surface, position, title, text, index, x, y,
// progress, age
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "position=top-left" - popups stacked at the top left
//   - "surface~window" - popups attached to a window
//   - "index>=1" - every popup but the first of each stack
//   - "title~=(?i)build" - title matches regex
//   - "age<30s" - popups shown in the last 30 seconds
func ParseFilter(expr string) (*FilterExpr, error) {
	filter := &FilterExpr{
		Conditions: make([]FilterCondition, 0),
		now:        time.Now,
	}
	if expr == "" {
		return filter, nil
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

// WithClock sets the clock used by age conditions.
func (f *FilterExpr) WithClock(now func() time.Time) *FilterExpr {
	f.now = now
	return f
}

// parseCondition parses a single condition like "position=top" or "title~error".
func parseCondition(s string) (FilterCondition, error) {
	// Longest operators first so "!=" is not read as "="
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}
			if err := cond.init(); err != nil {
				return FilterCondition{}, err
			}
			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init normalizes the field name and pre-parses the value.
func (c *FilterCondition) init() error {
	switch c.Field {
	case "stack", "key":
		c.Field = "stack"
	case "surface", "screen", "window":
		c.Field = "surface"
	case "title", "summary":
		c.Field = "title"
	case "text", "body":
		c.Field = "text"
	case "position", "pos":
		c.Field = "position"
		pos, err := model.ParsePosition(c.Value)
		if err != nil {
			return err
		}
		c.position = pos
		if c.Operator != FilterOpEqual && c.Operator != FilterOpNotEqual {
			return fmt.Errorf("operator %s not supported for position", c.Operator)
		}
	case "index", "idx", "x", "y", "progress":
		if c.Field == "idx" {
			c.Field = "index"
		}
		v, err := strconv.Atoi(c.Value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %s", c.Field, c.Value)
		}
		c.intVal = v
	case "age":
		d, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid age value: %w", err)
		}
		c.age = d
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

// Match tests if a popup of st matches the filter expression.
// All conditions must match (AND logic).
func (f *FilterExpr) Match(st stack.StackSnapshot, p stack.PopupSnapshot) bool {
	now := time.Now
	if f.now != nil {
		now = f.now
	}
	for _, cond := range f.Conditions {
		if !cond.match(st, p, now) {
			return false
		}
	}
	return true
}

// Match tests if a popup of st matches this single condition.
func (c *FilterCondition) Match(st stack.StackSnapshot, p stack.PopupSnapshot) bool {
	return c.match(st, p, time.Now)
}

func (c *FilterCondition) match(st stack.StackSnapshot, p stack.PopupSnapshot, now func() time.Time) bool {
	switch c.Field {
	case "stack":
		return c.matchString(st.Key)
	case "surface":
		return c.matchString(st.Surface)
	case "title":
		return c.matchString(p.Title)
	case "text":
		return c.matchString(p.Text)
	case "position":
		if c.Operator == FilterOpNotEqual {
			return st.Position != c.position
		}
		return st.Position == c.position
	case "index":
		return c.matchInt(p.Index)
	case "x":
		return c.matchInt(p.X)
	case "y":
		return c.matchInt(p.Y)
	case "progress":
		return c.matchInt(p.Progress)
	case "age":
		if p.ShownAt.IsZero() {
			return false
		}
		return c.matchAge(now().Sub(p.ShownAt))
	default:
		return false
	}
}

// matchString matches a string field.
func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

// matchInt matches an integer field with numeric comparison.
func (c *FilterCondition) matchInt(fieldValue int) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.intVal
	case FilterOpNotEqual:
		return fieldValue != c.intVal
	case FilterOpGreater:
		return fieldValue > c.intVal
	case FilterOpLess:
		return fieldValue < c.intVal
	case FilterOpGreaterEq:
		return fieldValue >= c.intVal
	case FilterOpLessEq:
		return fieldValue <= c.intVal
	default:
		return false
	}
}

// matchAge compares how long ago a popup was shown.
func (c *FilterCondition) matchAge(age time.Duration) bool {
	switch c.Operator {
	case FilterOpGreater:
		return age > c.age
	case FilterOpLess:
		return age < c.age
	case FilterOpGreaterEq:
		return age >= c.age
	case FilterOpLessEq:
		return age <= c.age
	default:
		return false
	}
}

// FilterStacks returns copies of stacks holding only the popups that match
// expr. Stacks left without popups are dropped.
func FilterStacks(stacks []stack.StackSnapshot, expr *FilterExpr) []stack.StackSnapshot {
	if expr == nil || len(expr.Conditions) == 0 {
		return stacks
	}

	result := make([]stack.StackSnapshot, 0, len(stacks))
	for _, st := range stacks {
		popups := make([]stack.PopupSnapshot, 0, len(st.Popups))
		for _, p := range st.Popups {
			if expr.Match(st, p) {
				popups = append(popups, p)
			}
		}
		if len(popups) == 0 {
			continue
		}
		st.Popups = popups
		result = append(result, st)
	}
	return result
}
