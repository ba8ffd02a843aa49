package handler

import (
	"errors"
	"log"

	"guestbook/internal/model"
)

// logUnexpected logs errors the client cannot fix. Validation and lookup
// failures are ordinary outcomes and stay out of the error log.
func logUnexpected(op string, err error) {
	if errors.Is(err, model.ErrValidation) ||
		errors.Is(err, model.ErrMessageNotFound) ||
		errors.Is(err, model.ErrReplyNotFound) {
		return
	}
	log.Printf("[ERROR] %s: err=%v", op, err)
}
