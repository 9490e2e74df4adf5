package skills

import "errors"

// Sentinel error kinds for catalog loading.
var (
	ErrInvalidCatalog = errors.New("invalid skill catalog")
	ErrLoadCatalog    = errors.New("load skill catalog failed")
)
