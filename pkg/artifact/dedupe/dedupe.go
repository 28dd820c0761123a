package dedupe

import "strings"

const (
	// DefaultWindow bounds how far back into the buffer the overlap scan
	// looks. Keeps the comparison O(window^2) instead of O(n^2) on large
	// buffers.
	DefaultWindow = 80

	// DefaultMinMatch is the shortest overlap worth stripping. Short matches
	// are more likely to be legitimately repeated text than a redelivered
	// fragment.
	DefaultMinMatch = 4
)

// Overlap reports how many leading characters of fragment already exist at the
// tail of buffer, using the default window and minimum match length.
func Overlap(buffer, fragment string) int {
	return OverlapWindow(buffer, fragment, DefaultWindow, DefaultMinMatch)
}

// OverlapWindow scans for the longest k such that the last k characters of
// buffer equal the first k characters of fragment, with k bounded by window
// and no smaller than minMatch. A fragment that is entirely a suffix of the
// buffer is stripped whole regardless of the window.
//
// This is a heuristic against generation backends that redeliver overlapping
// tail fragments. It can eat legitimately repeated short substrings; minMatch
// is the knob that trades that risk against missed duplicates.
func OverlapWindow(buffer, fragment string, window, minMatch int) int {
	if buffer == "" || fragment == "" {
		return 0
	}
	if minMatch < 1 {
		minMatch = 1
	}

	// Full-fragment redelivery: the entire fragment is already present.
	if len(fragment) <= len(buffer) && strings.HasSuffix(buffer, fragment) {
		return len(fragment)
	}

	max := len(fragment)
	if max > len(buffer) {
		max = len(buffer)
	}
	if max > window {
		max = window
	}

	for k := max; k >= minMatch; k-- {
		if strings.HasSuffix(buffer, fragment[:k]) {
			return k
		}
	}
	return 0
}

// Strip removes the detected overlap from the front of fragment.
func Strip(buffer, fragment string) string {
	return fragment[Overlap(buffer, fragment):]
}
