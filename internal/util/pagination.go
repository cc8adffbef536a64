package util

const DefaultLimit = 100

// Clamp normalizes skip/limit query values to sane bounds.
func Clamp(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 1000 {
		limit = DefaultLimit
	}
	return skip, limit
}
