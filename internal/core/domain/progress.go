package domain

// Percent is floor(offset / size * 100)
func Percent(offset, size int64) int {
	if size <= 0 {
		return 0
	}
	return int(offset * 100 / size)
}
