package utils

// CycleEnumPtr advances an int-backed enum in place, wrapping at the ends.
func CycleEnumPtr[T ~int](current *T, direction int, max T) {
	*current = (*current + T(direction) + max + 1) % (max + 1)
}
