// Package units formats byte counts as short human-readable strings, the
// way ftahirops-xtop formats sizes for its UI layer. No event message in
// the governor uses it at present.
package units

import "github.com/dustin/go-humanize"

// Bytes formats n bytes as a short human string, e.g. "96 MiB".
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
