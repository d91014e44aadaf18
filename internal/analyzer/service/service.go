package service

import (
	"errors"
	"time"
)

var (
	ErrDuplicateStock = errors.New("该股票已在关注列表中")
	errNotWatched     = errors.New("stock not found in watchlist")
	ErrInvalidSymbol  = errors.New("symbol is required")
	ErrInvalidMarket  = errors.New("invalid market")
	ErrInvalidTimer   = errors.New("invalid timer, expected HH:MM")
	ErrInvalidFilter  = errors.New("invalid date filter, expected today, yesterday or all")
)

// Clock returns the current time.
type Clock func() time.Time
