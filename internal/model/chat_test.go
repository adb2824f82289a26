package model

import "testing"

func TestSenderRole_Valid(t *testing.T) {
	cases := []struct {
		role SenderRole
		want bool
	}{
		{RoleUser, true},
		{RoleCompany, true},
		{SenderRole(""), false},
		{SenderRole("admin"), false},
	}
	for _, c := range cases {
		if got := c.role.Valid(); got != c.want {
			t.Errorf("Valid(%q) = %v, want %v", c.role, got, c.want)
		}
	}
}

func TestSenderRole_Other(t *testing.T) {
	if RoleUser.Other() != RoleCompany {
		t.Error("user's counterparty must be company")
	}
	if RoleCompany.Other() != RoleUser {
		t.Error("company's counterparty must be user")
	}
}
