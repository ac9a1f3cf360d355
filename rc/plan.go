package rc

const (
	// minCapacity is the initial slot count used when a source reports no
	// useful lower bound. It amortizes the first few doubling steps.
	minCapacity = 4

	// maxPlannedBytes caps how much payload an upper-bound hint may
	// pre-allocate. A hint beyond this is treated as advisory and the
	// build falls back to incremental growth from the lower bound.
	maxPlannedBytes = 1 << 30
)

// planCapacity chooses the initial slot capacity for a build from the
// source's size hint. elemSize is the in-block size of one slot in bytes.
// Pure; runs once, before anything is allocated.
func planCapacity(lower, upper int, upperKnown bool, elemSize int) int {
	if upperKnown && upper >= lower && int64(upper)*int64(elemSize) <= maxPlannedBytes {
		return upper
	}
	if lower > 0 {
		return lower
	}
	return minCapacity
}
