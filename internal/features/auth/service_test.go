package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

func TestValidateRegisterInput(t *testing.T) {
	valid := RegisterInput{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "s3cretpass",
		Role:     types.RoleStudent,
	}

	cases := []struct {
		name    string
		mutate  func(in *RegisterInput)
		wantErr error
	}{
		{"valid student", func(in *RegisterInput) {}, nil},
		{"valid teacher", func(in *RegisterInput) { in.Role = types.RoleTeacher }, nil},
		{"missing name", func(in *RegisterInput) { in.FullName = "" }, ErrMissingFields},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, ErrMissingFields},
		{"missing password", func(in *RegisterInput) { in.Password = "" }, ErrMissingFields},
		{"bad email", func(in *RegisterInput) { in.Email = "jane@@example" }, ErrInvalidEmail},
		{"email without domain", func(in *RegisterInput) { in.Email = "jane@" }, ErrInvalidEmail},
		{"short password", func(in *RegisterInput) { in.Password = "short" }, ErrWeakPassword},
		{"admin not self-assignable", func(in *RegisterInput) { in.Role = types.RoleAdmin }, ErrInvalidRole},
		{"unknown role", func(in *RegisterInput) { in.Role = "wizard" }, ErrInvalidRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)

			err := ValidateRegisterInput(input)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
