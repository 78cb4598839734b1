package poller

import (
	"strconv"
	"strings"
)

// LatestKey returns the key starting with prefix whose remainder parses as
// the largest non-negative integer timestamp. Keys with a non-numeric
// remainder are skipped. On equal timestamps the key scanned last wins;
// with map-derived input that order is not stable.
func LatestKey(keys []string, prefix string) (string, bool) {
	best := ""
	var bestTS int64 = -1
	for _, k := range keys {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok || rest == "" {
			continue
		}
		ts, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || ts < 0 {
			continue
		}
		if ts >= bestTS {
			best, bestTS = k, ts
		}
	}
	return best, bestTS >= 0
}
