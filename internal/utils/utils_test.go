package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	signed, err := GenerateAccessToken("user-1", "manager", "emp-1", secret, 15)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	token, err := jwt.ParseWithClaims(signed, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse: %v", err)
	}

	claims := token.Claims.(*AccessClaims)
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Role != "manager" {
		t.Errorf("role = %q, want manager", claims.Role)
	}
	if claims.EmployeeID != "emp-1" {
		t.Errorf("employeeId = %q, want emp-1", claims.EmployeeID)
	}
}

func TestAccessTokenWrongSecretRejected(t *testing.T) {
	signed, err := GenerateAccessToken("user-1", "admin", "", "right-secret", 15)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	token, err := jwt.ParseWithClaims(signed, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	if err == nil && token.Valid {
		t.Fatal("token signed with another secret must not validate")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "s3cret!") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestGenerateOTPFormat(t *testing.T) {
	code, err := GenerateOTP()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code %q, want six digits", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("code %q contains non-digit", code)
		}
	}

	hash, err := HashOTP(code)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckOTP(hash, code) {
		t.Error("correct code rejected")
	}
	if CheckOTP(hash, "000000") && code != "000000" {
		t.Error("wrong code accepted")
	}
}

func TestTOTPVerify(t *testing.T) {
	secret, url, err := GenerateTOTPSecret("Station Manager Portal", "amina@example.com")
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	if secret == "" || url == "" {
		t.Fatal("empty secret or otpauth url")
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if !VerifyTOTP(code, secret) {
		t.Error("current code rejected")
	}
	if VerifyTOTP("000000", secret) && code != "000000" {
		t.Error("bogus code accepted")
	}
}
