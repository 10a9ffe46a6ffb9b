package portal

import (
	"regexp"
	"strings"
)

// MatchesTile reports whether a results-list label refers to the requested
// tile. The portal embeds tile keys inside longer product labels
// ("ST68NW_DSM"), so this is a case-insensitive substring test.
func MatchesTile(label, tile string) bool {
	tile = strings.TrimSpace(tile)
	if tile == "" {
		return false
	}
	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(tile))
	if err != nil {
		return false
	}
	return pattern.MatchString(label)
}
