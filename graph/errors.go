package graph

import "errors"

var (
	// ErrInvalidRate a rate that is not strictly positive, or whose inverse rounds to zero
	ErrInvalidRate = errors.New("invalid exchange rate")

	// ErrUnknownCurrency a currency that has no node in the graph
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrNegativeAmount an amount below zero
	ErrNegativeAmount = errors.New("negative amount")

	// ErrNoRoute conversion attempted without a route between source and destination
	ErrNoRoute = errors.New("no route")
)
