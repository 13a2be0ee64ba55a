package review

import "errors"

var (
	ErrShopNotFound      = errors.New("shop not found")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong    = errors.New("comment is too long")
	ErrMissingUser       = errors.New("missing user")
	ErrInvalidPagination = errors.New("invalid pagination")
)
