package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stocktrack/backend/internal/domain/inventory"
	"github.com/stocktrack/backend/internal/domain/purchase"
)

// RegisterCustomValidators installs the domain value validators on gin's
// binding engine. Safe to call more than once.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("movementtype", validMovementType); err != nil {
		return err
	}
	return v.RegisterValidation("postatus", validPurchaseOrderStatus)
}

// validMovementType accepts the ledger movement types
func validMovementType(fl validator.FieldLevel) bool {
	return inventory.MovementType(fl.Field().String()).IsValid()
}

// validPurchaseOrderStatus accepts the purchase order workflow statuses
func validPurchaseOrderStatus(fl validator.FieldLevel) bool {
	return purchase.PurchaseOrderStatus(fl.Field().String()).IsValid()
}
