package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adriaviles2711/finanzaApp/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidType    = errors.New("invalid record type")
	ErrInvalidBudget  = errors.New("invalid budget")
	ErrUnknownTable   = errors.New("unknown table")
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction checks the fields the schema cannot enforce.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := validateString(txn.UserID, "user_id"); err != nil {
		return err
	}
	if !txn.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, txn.Type)
	}
	if txn.Amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeAmount, txn.Amount)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: date", ErrEmptyString)
	}
	return nil
}

// validateCategory checks name and type.
func validateCategory(cat *model.Category) error {
	if cat == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateString(cat.UserID, "user_id"); err != nil {
		return err
	}
	if err := validateString(cat.Name, "name"); err != nil {
		return err
	}
	if !cat.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, cat.Type)
	}
	return nil
}

// validateBudget checks the natural key and the limit.
func validateBudget(budget *model.Budget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if err := validateString(budget.UserID, "user_id"); err != nil {
		return err
	}
	if err := validateString(budget.CategoryID, "category_id"); err != nil {
		return err
	}
	if budget.Month < 1 || budget.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidBudget, budget.Month)
	}
	if budget.Year < 1 {
		return fmt.Errorf("%w: year %d", ErrInvalidBudget, budget.Year)
	}
	if !budget.Limit.IsPositive() {
		return fmt.Errorf("%w: limit must be positive, got %s", ErrInvalidBudget, budget.Limit)
	}
	return nil
}

// validateGoal checks name and amounts.
func validateGoal(goal *model.Goal) error {
	if goal == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if err := validateString(goal.UserID, "user_id"); err != nil {
		return err
	}
	if err := validateString(goal.Name, "name"); err != nil {
		return err
	}
	if goal.Target.IsNegative() {
		return fmt.Errorf("%w: target %s", ErrNegativeAmount, goal.Target)
	}
	return nil
}

// validateTable ensures the name is one of the synced collections.
func validateTable(name string) error {
	if !model.KnownTable(name) {
		return fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return nil
}
