package repository

import "errors"

var ErrNotFound = errors.New("not found")
var ErrInvalidCursor = errors.New("invalid cursor")
