package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	require.True(t, RoleStudent.Valid())
	require.True(t, RoleTeacher.Valid())
	require.True(t, RoleAdmin.Valid())
	require.False(t, Role("superadmin").Valid())
	require.False(t, Role("").Valid())
}

func TestRoleCanAuthor(t *testing.T) {
	require.False(t, RoleStudent.CanAuthor())
	require.True(t, RoleTeacher.CanAuthor())
	require.True(t, RoleAdmin.CanAuthor())
}

func TestPaymentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentStatusPending, PaymentStatusApproved, true},
		{PaymentStatusPending, PaymentStatusRejected, true},
		{PaymentStatusPending, PaymentStatusPending, false},
		{PaymentStatusApproved, PaymentStatusRejected, false},
		{PaymentStatusApproved, PaymentStatusPending, false},
		{PaymentStatusRejected, PaymentStatusApproved, false},
		{PaymentStatusRejected, PaymentStatusPending, false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestPaymentStatusTerminal(t *testing.T) {
	require.False(t, PaymentStatusPending.Terminal())
	require.True(t, PaymentStatusApproved.Terminal())
	require.True(t, PaymentStatusRejected.Terminal())
}

func TestPaymentStatusValid(t *testing.T) {
	require.True(t, PaymentStatusPending.Valid())
	require.False(t, PaymentStatus("refunded").Valid())
	require.False(t, PaymentStatus("").Valid())
}

func TestMoneyFromInt(t *testing.T) {
	m := NewMoneyFromInt(499)
	require.Equal(t, "499", m.String())
	require.False(t, m.IsNegative())
	require.False(t, m.IsZero())

	require.True(t, NewMoneyFromInt(0).IsZero())
	require.True(t, NewMoneyFromInt(-1).IsNegative())
}

func TestMoneyEqual(t *testing.T) {
	a := NewMoney(12.50)
	b, err := NewMoneyFromString("12.5")
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(NewMoneyFromInt(12)))
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(NewMoney(99.99))
	require.NoError(t, err)
	require.Equal(t, `"99.99"`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"150"`), &m))
	require.True(t, m.Equal(NewMoneyFromInt(150)))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.00"))
	require.True(t, m.Equal(NewMoneyFromInt(42)))

	require.Error(t, m.Scan("not-a-number"))
}
