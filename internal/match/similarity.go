package match

// Ratio computes the Ratcliff/Obershelp similarity of two strings:
// twice the total length of matching blocks over the combined length.
// 1 is identical, 0 is disjoint. Comparison is byte-wise over the
// already-normalized inputs.
func Ratio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		if len(a) == 0 && len(b) == 0 {
			return 1
		}
		return 0
	}
	matched := matchingBlocks(a, b)
	return 2 * float64(matched) / float64(len(a)+len(b))
}

// matchingBlocks sums matched characters by recursively splitting
// around the longest common substring.
func matchingBlocks(a, b string) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingBlocks(a[:ai], b[:bi])
	total += matchingBlocks(a[ai+size:], b[bi+size:])
	return total
}

func longestMatch(a, b string) (ai, bi, size int) {
	// lengths[j] is the match length ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > size {
					size = lengths[j]
					ai = i - size
					bi = j - size
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return ai, bi, size
}
