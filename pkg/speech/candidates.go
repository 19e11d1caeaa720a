package speech

import "context"

// DefaultMaxCandidates bounds how many lookups one validation cycle may issue.
const DefaultMaxCandidates = 48

// CandidateWindows lists substrings of buffer worth validating as an
// identifier whose length lies in [minLen, maxLen]. The whole buffer comes
// first when it fits. Longer buffers yield windows of every valid length,
// longest first, each length ordered right end, left end, then the middle
// offsets from right to left, so the most recently spoken digits win. The
// same windows over the stutter-collapsed buffer follow. Duplicates are dropped.
func CandidateWindows(buffer string, minLen, maxLen int) []string {
	if minLen <= 0 || maxLen < minLen {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	appendWindows(buffer, minLen, maxLen, add)
	if collapsed := CollapseStutter(buffer); collapsed != buffer {
		appendWindows(collapsed, minLen, maxLen, add)
	}
	return out
}

func appendWindows(buf string, minLen, maxLen int, add func(string)) {
	n := len(buf)
	if n < minLen {
		return
	}
	if n <= maxLen {
		add(buf)
		return
	}
	for l := maxLen; l >= minLen; l-- {
		add(buf[n-l:])
		add(buf[:l])
		for off := n - l - 1; off >= 1; off-- {
			add(buf[off : off+l])
		}
	}
}

// CollapseStutter shortens every run of three or more identical digits to
// two. Callers who say "four four four" for a "double four" produce these.
func CollapseStutter(buf string) string {
	if len(buf) < 3 {
		return buf
	}
	out := make([]byte, 0, len(buf))
	run := 0
	for i := 0; i < len(buf); i++ {
		if i > 0 && buf[i] == buf[i-1] {
			run++
		} else {
			run = 1
		}
		if run <= 2 {
			out = append(out, buf[i])
		}
	}
	return string(out)
}

// FirstMatch validates candidates in order and returns the first hit.
// It stops early when ctx is done or max lookups have been spent.
func FirstMatch[T any](ctx context.Context, candidates []string, max int, lookup func(context.Context, string) (T, bool)) (string, T, bool) {
	var zero T
	if max <= 0 {
		max = DefaultMaxCandidates
	}
	for i, c := range candidates {
		if i >= max {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if v, ok := lookup(ctx, c); ok {
			return c, v, true
		}
	}
	return "", zero, false
}
