package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInsufficientCredit = errors.New("restaurant has insufficient credit to accept orders")
	ErrOrderNotFound      = errors.New("order not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
)

// ItemNotFoundError names the offending line item so the caller can tell the
// customer which part of the basket is stale.
type ItemNotFoundError struct {
	MenuItemID uint
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item %d not found for this restaurant", e.MenuItemID)
}

type ItemUnavailableError struct {
	Name string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("menu item '%s' is currently unavailable", e.Name)
}

// IllegalTransitionError carries the current status and the allowed targets;
// its text is shown to owners replying by email, so it has to read as an
// instruction, not a code.
type IllegalTransitionError struct {
	From    string
	To      string
	Allowed []string
}

func (e *IllegalTransitionError) Error() string {
	allowed := "none"
	if len(e.Allowed) > 0 {
		allowed = strings.Join(e.Allowed, ", ")
	}
	return fmt.Sprintf("cannot transition order from '%s' to '%s' (allowed: %s)", e.From, e.To, allowed)
}
