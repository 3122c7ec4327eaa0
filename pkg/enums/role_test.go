package enums

import "testing"

func TestParseRole(t *testing.T) {
	role, err := ParseRole("admin")
	if err != nil || role != RoleAdmin {
		t.Fatalf("expected admin role, got %q err=%v", role, err)
	}
	if _, err := ParseRole("staff"); err == nil {
		t.Fatalf("expected unknown role to fail")
	}
	if !RoleCustomer.IsValid() || Role("root").IsValid() {
		t.Fatalf("unexpected IsValid result")
	}
}
