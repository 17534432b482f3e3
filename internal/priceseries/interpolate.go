package priceseries

// InterpolateGaps linearly fills nil runs in a monthly metric series.
// For each maximal run of nils: with known values on both sides the run is
// filled by linear interpolation over integer month distance; with a known
// value on only one side the run is filled flat with that value; with no
// known value on either side the run stays nil. Non-nil values pass
// through unchanged and the output always has the input's length.
func InterpolateGaps(values []*float64) []*float64 {
	out := make([]*float64, len(values))
	copy(out, values)

	i := 0
	for i < len(out) {
		if out[i] != nil {
			i++
			continue
		}

		// Run of nils is [i, j).
		j := i
		for j < len(out) && out[j] == nil {
			j++
		}

		prevIdx := i - 1
		var prev *float64
		if prevIdx >= 0 {
			prev = out[prevIdx]
		}
		var next *float64
		if j < len(out) {
			next = out[j]
		}

		switch {
		case prev == nil && next == nil:
			// Nothing to interpolate from.
		case prev == nil:
			for k := i; k < j; k++ {
				v := *next
				out[k] = &v
			}
		case next == nil:
			for k := i; k < j; k++ {
				v := *prev
				out[k] = &v
			}
		default:
			span := float64(j - prevIdx)
			for k := i; k < j; k++ {
				v := *prev + float64(k-prevIdx)/span*(*next-*prev)
				out[k] = &v
			}
		}

		i = j
	}
	return out
}
