package catalog

import (
	"errors"
)

var (
	ErrShopNotFound   = errors.New("shop not found")
	ErrBarberNotFound = errors.New("barber not found")
)
