package ebitenbackend

// primLessOrEqual reports whether a draws before or with b: farther first.
// Ties keep submission order.
func primLessOrEqual(a, b *prim) bool {
	return a.depth >= b.depth
}

// sortPrims sorts prims far to near using buf as scratch space and returns
// both slices, since the result may land in either. Bottom-up merge sort:
// zero allocations once buf reaches its high-water mark.
func sortPrims(prims, buf []prim) ([]prim, []prim) {
	n := len(prims)
	if n <= 1 {
		return prims, buf
	}
	if cap(buf) < n {
		buf = make([]prim, n)
	}
	buf = buf[:n]

	a, b := prims, buf
	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
	}
	return a, b[:0]
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []prim, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if primLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
