package handlers

import (
	"strconv"
	"strings"
)

// parseLimit reads a positive page size, falling back to def and capping at max
func parseLimit(raw string, def, max int) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return limit
}

// normalizeDisplayName trims a display name and rejects empty or overlong names
func normalizeDisplayName(name string) (string, bool) {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) == 0 || len(runes) > maxDisplayName {
		return "", false
	}
	for _, r := range runes {
		if r < 0x20 || r == 0x7f {
			return "", false
		}
	}
	return string(runes), true
}

const maxDisplayName = 32
