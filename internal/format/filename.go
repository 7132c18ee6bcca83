package format

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	timestampToken = "%%timestamp%%"
	orderIDsToken  = "%%order_ids%%"

	timestampLayout = "20060102150405"

	// Filesystem-safe cap; over-long names are truncated from the end.
	maxFilenameLength = 100
)

// Filename expands merge variables in a filename template.
// %%timestamp%% becomes the given time in UTC as YYYYMMDDHHmmss;
// %%order_ids%% becomes the sorted unique record ids joined by underscores.
func Filename(template string, now time.Time, ids []int64) string {
	name := strings.ReplaceAll(template, timestampToken, now.UTC().Format(timestampLayout))
	name = strings.ReplaceAll(name, orderIDsToken, joinIDs(ids))

	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	return name
}

func joinIDs(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	unique := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	sorted := make([]int64, 0, len(unique))
	for id := range unique {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, "_")
}
