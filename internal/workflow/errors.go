package workflow

import "errors"

var (
	ErrNoPages          = errors.New("document has no pages")
	ErrMissingImage     = errors.New("page has no image path")
	ErrPageSequence     = errors.New("page numbers must be 1-based and contiguous")
	ErrInvalidDimension = errors.New("page dimensions must be positive")
	ErrEmptyTranslation = errors.New("model returned empty html")
	ErrRasterizeFailed  = errors.New("document rasterization failed")
	ErrInvalidCycles    = errors.New("cycles must not be negative")
)
