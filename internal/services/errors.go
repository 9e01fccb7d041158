package services

import (
	"errors"
	"fmt"
	"math"
)

// Error kinds. Match with errors.Is; the caller-facing text is in *Error.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrPersistence       = errors.New("persistence failure")
)

// Error carries a stable, caller-safe message next to its kind and, for
// persistence failures, the underlying cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func invalid(msg string) error { return &Error{Kind: ErrInvalidArgument, Message: msg} }
func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }
func conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }
func insufficient(msg string) error { return &Error{Kind: ErrInsufficientStock, Message: msg} }

// persistence wraps a storage error unless it already is a service error.
func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: ErrPersistence, Message: "Failed to persist changes.", Err: fmt.Errorf("%s: %w", op, err)}
}

// Message returns the caller-facing text of err.
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return "Something went wrong. Please try again."
}

// MaxQuantity bounds quantities, thresholds and stored stock levels so they
// fit the 32-bit qty and min_stock columns of every dialect.
const MaxQuantity = math.MaxInt32

const (
	MsgInvalidTransfer     = "Invalid transfer request."
	MsgSameStore           = "Source and destination stores must differ."
	MsgInsufficientSource  = "Insufficient stock in source store."
	MsgInsufficientStore   = "Insufficient stock in store."
	MsgTransferOK          = "Stock transfer successful."
	MsgDuplicateTransfer   = "Duplicate transfer request."
	MsgDestinationNotFound = "Destination store not found."
	MsgStoreNotFound       = "Store not found."
	MsgProductNotFound     = "Product not found."
	MsgPairNotFound        = "This store does not handle the specified product."
	MsgNoStoreInventory    = "No inventory found for the specified store."
	MsgNegativeMinStock    = "Minimum stock must be a non-negative value."
	MsgMinStockUpdated     = "Minimum stock updated successfully."
	MsgInvalidQuantity     = "Quantity must be greater than zero."
	MsgQuantityTooLarge    = "Quantity must not exceed 2147483647."
	MsgMinStockTooLarge    = "Minimum stock must not exceed 2147483647."
	MsgStockLimit          = "Resulting stock would exceed 2147483647."
	MsgInvalidPage         = "Page and pageSize must be greater than zero."
	MsgInvalidMovementType = "Movement type must be IN, OUT or TRANSFER."
	MsgProductInUse        = "Product is referenced by inventory or movements."
	MsgStoreInUse          = "Store is referenced by inventory or movements."
	MsgIDMismatch          = "Route id does not match body id."
)
