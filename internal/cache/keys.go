package cache

import "strings"

// keyPrefix namespaces every entry this service writes, so a shared Redis
// instance can be inspected or swept with a single SCAN pattern.
const keyPrefix = "nalar"

// Key joins the given segments into a colon-delimited key under the
// service prefix.
func Key(segments ...string) string {
	return strings.Join(append([]string{keyPrefix}, segments...), ":")
}
