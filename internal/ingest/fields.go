package ingest

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errIntRange = errors.New("number out of int64 range")

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// firstAnyAlias returns the first present value for a named alias set.
func firstAnyAlias(m map[string]any, aliases map[string][]string, key string) any {
	for _, p := range aliases[key] {
		if v := lookupAny(m, p); v != nil {
			return v
		}
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string).
// A float outside the int64 range is an error, not a wrapped value.
func firstInt64Flexible(m map[string]any, paths ...string) (*int64, error) {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			// float64(math.MaxInt64) rounds up to 2^63, itself out of range
			if v >= math.MaxInt64 || v < math.MinInt64 {
				return nil, errIntRange
			}
			x := int64(v)
			return &x, nil
		case int:
			x := int64(v)
			return &x, nil
		case int64:
			x := v
			return &x, nil
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n, nil
			}
		}
	}
	return nil, nil
}

// positiveInt returns nil for absent, zero or negative values.
func positiveInt(p *int64) *int {
	if p == nil || *p <= 0 {
		return nil
	}
	x := int(*p)
	return &x
}

func intOrZero(p *int64) int {
	if p == nil {
		return 0
	}
	return int(*p)
}

// formatABV renders a number or string ABV with a trailing percent sign.
// Zero, empty and absent values yield "".
func formatABV(v any) string {
	switch t := v.(type) {
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64) + "%"
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return ""
		}
		if strings.HasSuffix(s, "%") || strings.HasSuffix(s, "％") {
			return s
		}
		return s + "%"
	}
	return ""
}

// nonEmpty keeps the non-blank entries of in, in order.
func nonEmpty(in ...string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
