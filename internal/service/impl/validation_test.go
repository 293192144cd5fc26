package impl

import (
	"errors"
	"strings"
	"testing"

	"userauth/internal/domain"
	"userauth/internal/dto"
)

func TestValidateStructReportsJSONFieldNamesAndMessages(t *testing.T) {
	err := validateStruct(dto.ResetPasswordRequest{Email: "a@x.com", NewPassword: "abc"})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	want := []domain.FieldError{
		{Field: "otp", Message: "OTP is required"},
		{Field: "newPassword", Message: "Password must be at least 6 characters long"},
	}
	if len(verr.Fields) != len(want) {
		t.Fatalf("expected %v, got %v", want, verr.Fields)
	}
	for i := range want {
		if verr.Fields[i] != want[i] {
			t.Fatalf("field %d: expected %+v, got %+v", i, want[i], verr.Fields[i])
		}
	}
}

func TestValidateStructAcceptsValidInput(t *testing.T) {
	if err := validateStruct(dto.LoginRequest{Email: "a@x.com", Password: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStructPasswordUpperBound(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	err := validateStruct(dto.RegisterRequest{Email: "a@x.com", Password: string(long), Name: "Ann"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Field != "password" {
		t.Fatalf("expected password to be rejected, got %v", err)
	}
	if verr.Fields[0].Message != "Password must be at most 72 bytes long" {
		t.Fatalf("unexpected message %q", verr.Fields[0].Message)
	}
}

func TestValidateStructPasswordUpperBoundCountsBytes(t *testing.T) {
	// 40 characters, 80 bytes.
	accented := strings.Repeat("é", 40)

	cases := []struct {
		name  string
		req   any
		field string
	}{
		{name: "register", req: dto.RegisterRequest{Email: "a@x.com", Password: accented, Name: "Ann"}, field: "password"},
		{name: "reset", req: dto.ResetPasswordRequest{Email: "a@x.com", OTP: "123456", NewPassword: accented}, field: "newPassword"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var verr *domain.ValidationError
			if err := validateStruct(tc.req); !errors.As(err, &verr) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0].Field != tc.field {
				t.Fatalf("expected only %s to fail, got %v", tc.field, verr.Fields)
			}
		})
	}

	// 36 characters, 72 bytes: exactly at the cap.
	if err := validateStruct(dto.RegisterRequest{Email: "a@x.com", Password: strings.Repeat("é", 36), Name: "Ann"}); err != nil {
		t.Fatalf("72 bytes must be accepted, got %v", err)
	}
}
