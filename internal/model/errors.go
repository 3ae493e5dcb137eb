package model

import "errors"

// ErrValidation marks request payload errors so handlers can map them
// to a 400 without inspecting messages.
var ErrValidation = errors.New("validation failed")
