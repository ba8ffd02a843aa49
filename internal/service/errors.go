package service

import (
	"errors"

	"guestbook/internal/model"
	"guestbook/internal/repository"
)

// queryError wraps a failed read. Not-found and validation errors pass through.
func queryError(op string, err error) error {
	if passThrough(err) {
		return err
	}
	return model.NewQueryError(op, repository.Classify(err), err)
}

// persistenceError wraps a failed write. Not-found and validation errors pass through.
func persistenceError(op string, err error) error {
	if passThrough(err) {
		return err
	}
	return model.NewPersistenceError(op, repository.Classify(err), err)
}

func passThrough(err error) bool {
	return errors.Is(err, model.ErrMessageNotFound) ||
		errors.Is(err, model.ErrReplyNotFound) ||
		errors.Is(err, model.ErrValidation)
}
