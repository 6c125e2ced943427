package models

import (
	"fmt"
	"strings"
)

// TechStack is the canonical form of a project's technologies. Stored
// documents carry either a comma separated string or an array.
type TechStack []string

// ParseTechStack normalizes any stored representation into a TechStack
func ParseTechStack(raw interface{}) TechStack {
	switch v := raw.(type) {
	case nil:
		return TechStack{}
	case string:
		return SplitList(v)
	case []string:
		return cleanList(v)
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			items = append(items, fmt.Sprint(item))
		}
		return cleanList(items)
	default:
		return SplitList(fmt.Sprint(v))
	}
}

// SplitList splits a comma separated list, trimming entries and dropping empty ones
func SplitList(s string) []string {
	return cleanList(strings.Split(s, ","))
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// String joins the stack the way the edit form shows it
func (t TechStack) String() string {
	return strings.Join(t, ", ")
}
