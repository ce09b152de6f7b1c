package cbzconv

// Range is the half-open page interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of pages in r.
func (r Range) Len() int {
	return r.End - r.Start
}

// SplitRanges cuts total pages into contiguous ranges of at most size pages.
// Every range is full except possibly the last. total <= 0 yields nil;
// size <= 0 yields a single range.
func SplitRanges(total, size int) []Range {
	if total <= 0 {
		return nil
	}
	if size <= 0 || size >= total {
		return []Range{{Start: 0, End: total}}
	}
	n := (total + size - 1) / size
	ranges := make([]Range, 0, n)
	for start := 0; start < total; start += size {
		ranges = append(ranges, Range{Start: start, End: min(start+size, total)})
	}
	return ranges
}
