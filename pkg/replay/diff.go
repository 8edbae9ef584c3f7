package replay

// KeyDelta describes how coverage of one logical object differs between
// two replay lists.
type KeyDelta struct {
	Key Key `json:"key"`

	// BytesA and BytesB are the covered bytes on each side. A whole-file
	// request makes the side's byte count unknown; WholeA/WholeB flag that.
	BytesA uint64 `json:"bytesA"`
	BytesB uint64 `json:"bytesB"`
	WholeA bool   `json:"wholeA"`
	WholeB bool   `json:"wholeB"`
}

// Diff is the result of comparing two replay lists.
type Diff struct {
	// OnlyA and OnlyB are keys requested on one side only, in
	// first-appearance order.
	OnlyA []Key `json:"onlyA,omitempty"`
	OnlyB []Key `json:"onlyB,omitempty"`

	// Changed holds keys present on both sides with differing coverage.
	Changed []KeyDelta `json:"changed,omitempty"`

	// Common counts keys with identical coverage on both sides.
	Common int `json:"common"`
}

// Empty reports whether the two lists were coverage-equivalent.
func (d Diff) Empty() bool {
	return len(d.OnlyA) == 0 && len(d.OnlyB) == 0 && len(d.Changed) == 0
}

// coverage summarizes one side's requests for a key.
type coverage struct {
	bytes uint64
	whole bool
}

// Compare diffs two replay lists by key and covered bytes. Both inputs are
// coalesced first so duplicate or overlapping ranges do not show up as
// spurious differences.
func Compare(a, b []Request) Diff {
	covA, orderA := coverageByKey(a)
	covB, orderB := coverageByKey(b)

	var d Diff
	for _, key := range orderA {
		ca := covA[key]
		cb, ok := covB[key]
		if !ok {
			d.OnlyA = append(d.OnlyA, key)
			continue
		}
		if ca == cb {
			d.Common++
			continue
		}
		d.Changed = append(d.Changed, KeyDelta{
			Key:    key,
			BytesA: ca.bytes,
			BytesB: cb.bytes,
			WholeA: ca.whole,
			WholeB: cb.whole,
		})
	}
	for _, key := range orderB {
		if _, ok := covA[key]; !ok {
			d.OnlyB = append(d.OnlyB, key)
		}
	}
	return d
}

func coverageByKey(requests []Request) (map[Key]coverage, []Key) {
	cov := make(map[Key]coverage)
	var order []Key
	for _, r := range Coalesce(requests) {
		key := r.Key()
		c, ok := cov[key]
		if !ok {
			order = append(order, key)
		}
		if r.WholeFile {
			c.whole = true
		} else if n, known := r.CoveredBytes(); known {
			c.bytes += n
		}
		cov[key] = c
	}
	return cov, order
}
