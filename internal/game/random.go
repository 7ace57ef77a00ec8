package game

// nextRandom advances the xorshift64 cursor. The cursor is never zero.
func nextRandom(x uint64) uint64 {
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	return x
}
