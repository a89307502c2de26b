package http

import (
	"time"

	xutil "VolEdge/pkg/util"
)

// ParseDateParam parses a YYYY-MM-DD value, reporting failures as a 400 AppError.
func ParseDateParam(field, s string) (time.Time, *AppError) {
	t, err := time.Parse(xutil.DateLayout, s)
	if err != nil {
		return time.Time{}, FieldError("ERR_DATETIME", field, field+" must be a date formatted YYYY-MM-DD")
	}
	return t, nil
}
