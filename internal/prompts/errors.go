package prompts

import "errors"

var (
	ErrInvalidStage = errors.New("stage must be translate or critique")
	ErrMissingParam = errors.New("missing prompt parameter")
)
