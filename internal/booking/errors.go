package booking

import "errors"

var ErrInvalidDate = errors.New("invalid date")
