package statutory

import "errors"

var (
	ErrInvalidTaxInput = errors.New("invalid tax input")
	ErrInvalidTable    = errors.New("invalid statutory table")
	ErrTableNotFound   = errors.New("no statutory table effective for period")
)
