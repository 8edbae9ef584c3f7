package replay

import "sort"

// span is an inclusive byte range being merged.
type span struct {
	lower, upper uint64
}

// group accumulates the requests seen for one key.
type group struct {
	wholeFile bool
	spans     []span
}

// Coalesce merges a raw request sequence into the minimal covering set per
// logical object. Requests are grouped by Key in first-appearance order;
// within a key, overlapping and adjacent byte ranges are merged, and a
// whole-file request absorbs every range for that key. Output ordering is
// key first-appearance order with ranges ascending inside a key, so
// coalescing an already-coalesced list returns it unchanged.
func Coalesce(requests []Request) []Request {
	groups := make(map[Key]*group)
	order := make([]Key, 0, len(requests))

	for _, r := range requests {
		key := r.Key()
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		if r.WholeFile {
			g.wholeFile = true
			continue
		}
		if r.ByteLower != nil && r.ByteUpper != nil {
			g.spans = append(g.spans, span{lower: *r.ByteLower, upper: *r.ByteUpper})
		}
	}

	out := make([]Request, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.wholeFile {
			out = append(out, NewWholeFileRequest(key.ProductRootURI, key.RootFolder, key.ContentKey, key.Index))
			continue
		}
		for _, s := range mergeSpans(g.spans) {
			out = append(out, NewRangeRequest(key.ProductRootURI, key.RootFolder, key.ContentKey, key.Index, s.lower, s.upper))
		}
	}
	return out
}

// mergeSpans sorts spans ascending and merges overlapping or adjacent ones.
// Adjacency is upper+1 == lower since bounds are inclusive.
func mergeSpans(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].lower != sorted[j].lower {
			return sorted[i].lower < sorted[j].lower
		}
		return sorted[i].upper < sorted[j].upper
	})

	merged := sorted[:1]
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.lower <= last.upper || (last.upper < ^uint64(0) && s.lower == last.upper+1) {
			if s.upper > last.upper {
				last.upper = s.upper
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// TotalCoveredBytes sums the covered bytes of every range request in the
// list. wholeFiles reports how many requests cover an entire object and
// therefore contribute an unknown amount.
func TotalCoveredBytes(requests []Request) (n uint64, wholeFiles int) {
	for _, r := range requests {
		if c, ok := r.CoveredBytes(); ok {
			n += c
		} else if r.WholeFile {
			wholeFiles++
		}
	}
	return n, wholeFiles
}
