package handler

import (
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"salon-scheduler/internal/store"
)

// Operator is the single account allowed to log in.
type Operator struct {
	Email        string
	PasswordHash string
}

type Handler struct {
	store    *store.Store
	operator Operator
	secret   string
}

func New(st *store.Store, op Operator, secret string) *Handler {
	return &Handler{store: st, operator: op, secret: secret}
}

func rpcError(err error) error {
	switch {
	case errors.Is(err, store.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, store.ErrOverflow):
		return status.Error(codes.OutOfRange, err.Error())
	default:
		log.Printf("internal error: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
}

// result converts a store error into a status error.
func result[T any](v T, err error) (T, error) {
	if err != nil {
		var zero T
		return zero, rpcError(err)
	}
	return v, nil
}
