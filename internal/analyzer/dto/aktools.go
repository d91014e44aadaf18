package dto

import (
	"fmt"
	"strconv"
	"strings"
)

// AKToolsRow is one record of an akshare table served over HTTP.
type AKToolsRow map[string]interface{}

// String returns the first present column as text.
func (r AKToolsRow) String(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return strings.TrimSpace(fmt.Sprintf("%v", v))
		}
	}
	return ""
}

// Float returns the first present, parseable column.
func (r AKToolsRow) Float(keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case string:
			f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
			if err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// FloatPtr is Float returning nil when absent.
func (r AKToolsRow) FloatPtr(keys ...string) *float64 {
	f, ok := r.Float(keys...)
	if !ok {
		return nil
	}
	return &f
}
