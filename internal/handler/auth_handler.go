package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"salon-scheduler/internal/auth"
)

func (h *Handler) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", status.Error(codes.InvalidArgument, "email and password required")
	}

	// same error for unknown email and wrong password
	if email != h.operator.Email || !auth.CheckPassword(h.operator.PasswordHash, password) {
		return "", status.Error(codes.Unauthenticated, "invalid credentials")
	}

	tok, err := auth.MakeToken(email, h.secret)
	if err != nil {
		return "", status.Error(codes.Internal, "internal error")
	}
	return tok, nil
}
