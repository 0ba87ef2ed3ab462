package util

import (
	"strconv"

	"github.com/Skotchmaster/quickcart/internal/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

func ParseIntDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// Window turns the skip and limit query values into an offset and a page size.
func Window(skip, limit string) (offset, size int, err error) {
	offset, err = ParseIntDefault(skip, 0)
	if err != nil || offset < 0 {
		return 0, 0, domain.Validation("skip must be a non-negative integer")
	}
	size, err = ParseIntDefault(limit, DefaultLimit)
	if err != nil || size < 1 || size > MaxLimit {
		return 0, 0, domain.Validation("limit must be between 1 and %d", MaxLimit)
	}
	return offset, size, nil
}

// ParseID reads a positive numeric path id.
func ParseID(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 0)
	if err != nil || v == 0 {
		return 0, domain.Validation("id must be a positive integer")
	}
	return uint(v), nil
}
