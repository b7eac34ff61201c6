package state

// Millis is a wrapping 32-bit millisecond timestamp, the native clock unit
// of the mesh. It wraps roughly every 49.7 days, so timestamps must never be
// compared with plain < or >; the signed-difference helpers below interpret
// any distance under half the range (~24.8 days) correctly across the wrap.
type Millis uint32

// Since returns the signed distance from then to now in milliseconds.
// A negative result means then is (slightly) in the future.
func Since(now, then Millis) int32 {
	return int32(uint32(now) - uint32(then))
}

// Elapsed reports whether at least period milliseconds have passed between
// then and now.
func Elapsed(now, then Millis, period uint32) bool {
	return Since(now, then) >= int32(period)
}

// Fresh reports whether then is less than timeout milliseconds in the past.
// Timestamps slightly in the future count as fresh.
func Fresh(now, then Millis, timeout uint32) bool {
	return Since(now, then) < int32(timeout)
}
