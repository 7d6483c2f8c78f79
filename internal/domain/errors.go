package domain

import "errors"

var (
	// ErrPositionOpen blocks a new entry while a position exists for the
	// instrument, or while its existence cannot be confirmed.
	ErrPositionOpen = errors.New("position already open")

	// ErrInsufficientBalance rejects an entry when the available quote
	// balance is below the configured minimum.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrZeroQuantity rejects an entry whose computed quantity floors to zero.
	ErrZeroQuantity = errors.New("computed quantity is zero")

	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrExchange     = errors.New("exchange request failed")
	ErrWSDisconnect = errors.New("websocket disconnected")
)
