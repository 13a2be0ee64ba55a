package admin

import (
	"errors"
)

var (
	ErrShopConflict = errors.New("shop already exists")
	ErrInvalidShop  = errors.New("invalid shop")
)
