// Package convert provides checked conversions between the unsigned
// integers of the chain types and the signed columns SQL stores them in.
package convert

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when a value does not fit the target type.
var ErrOverflow = errors.New("integer overflow")

// Uint64ToInt64 converts v for a BIGINT column.
func Uint64ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d cannot be converted to int64", ErrOverflow, v)
	}
	return int64(v), nil
}

// Int64ToUint64 converts a BIGINT column value back to a height or epoch.
func Int64ToUint64(v int64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: cannot convert negative %d to uint64", ErrOverflow, v)
	}
	return uint64(v), nil
}

// Int64ToUint32 converts a BIGINT column value back to a 32-bit header field.
func Int64ToUint32(v int64) (uint32, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d cannot be converted to uint32", ErrOverflow, v)
	}
	return uint32(v), nil
}

// IntToInt32 converts a configured size, such as a pool limit, for APIs that take int32.
func IntToInt32(v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d cannot be converted to int32", ErrOverflow, v)
	}
	return int32(v), nil
}
