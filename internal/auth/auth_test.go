package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"salon-scheduler/internal/auth"
)

func TestPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !auth.CheckPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if auth.CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
	if auth.CheckPassword("not-a-hash", "s3cret") {
		t.Error("garbage hash accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := auth.MakeToken("owner@salon.test", "secret")
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	c, err := auth.ParseToken(tok, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Operator != "owner@salon.test" || c.Subject != "owner@salon.test" {
		t.Errorf("claims = %+v", c)
	}
}

func TestParseTokenRejects(t *testing.T) {
	good, _ := auth.MakeToken("op", "secret")

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Operator: "op",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("secret"))

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{Operator: "op"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name, raw, secret string
	}{
		{"wrong secret", good, "other"},
		{"expired", expired, "secret"},
		{"alg none", none, "secret"},
		{"garbage", "not.a.token", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.ParseToken(tt.raw, tt.secret); err == nil {
				t.Error("expected error")
			}
		})
	}
}
