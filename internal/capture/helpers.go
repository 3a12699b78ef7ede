package capture

import (
	"strconv"
	"strings"
	"time"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// compareMajorMinor reports whether two version strings agree on their
// first two dot-separated components, ported from the original wrapper's
// compare_major_minor_versions.
func compareMajorMinor(a, b string) bool {
	aParts := strings.SplitN(a, ".", 3)
	bParts := strings.SplitN(b, ".", 3)
	if len(aParts) < 2 || len(bParts) < 2 {
		return false
	}
	return aParts[0] == bParts[0] && aParts[1] == bParts[1]
}

func parseTaskID(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
