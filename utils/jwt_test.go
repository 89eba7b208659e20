package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-prueba")

	userID := uuid.NewString()
	token, err := GenerateToken(userID, "teacher")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("uid = %q, se esperaba %q", claims.UserID, userID)
	}
	if claims.Role != "teacher" {
		t.Errorf("role = %q", claims.Role)
	}
	if claims.ID == "" {
		t.Error("el token no lleva jti")
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-prueba")
	token, err := GenerateToken(uuid.NewString(), "user")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	t.Setenv("JWT_SECRET", "otro-secreto")
	if _, err := VerifyToken(token); err == nil {
		t.Error("un token firmado con otro secreto debe rechazarse")
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-prueba")
	if _, err := VerifyToken("no-es-un-jwt"); err == nil {
		t.Error("una cadena arbitraria debe rechazarse")
	}
}
