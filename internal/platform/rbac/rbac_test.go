package rbac

import "testing"

func TestParse(t *testing.T) {
	for _, tag := range []string{"USER", "ADMIN", "MANAGER", "CUSTOMER_SERVICE", "INVENTORY_MANAGER"} {
		r, err := Parse(tag)
		if err != nil {
			t.Errorf("Parse(%q): %v", tag, err)
		}
		if string(r) != tag {
			t.Errorf("Parse(%q) = %q", tag, r)
		}
	}
	if _, err := Parse("ROOT"); err == nil {
		t.Error("Parse(ROOT): want error, got nil")
	}
	if _, err := Parse("user"); err == nil {
		t.Error("Parse(user): want error for lowercase tag, got nil")
	}
}

func TestAuthority(t *testing.T) {
	if got := Authority(RoleAdmin); got != "ROLE_ADMIN" {
		t.Errorf("Authority(ADMIN) = %q, want ROLE_ADMIN", got)
	}
	got := Authorities([]Role{RoleUser, RoleManager})
	if len(got) != 2 || got[0] != "ROLE_USER" || got[1] != "ROLE_MANAGER" {
		t.Errorf("Authorities = %v", got)
	}
}

func TestHasAny(t *testing.T) {
	roles := []Role{RoleUser, RoleCustomerService}
	if !HasAny(roles, RoleCustomerService) {
		t.Error("HasAny should match held role")
	}
	if !HasAny(roles, RoleAdmin, RoleUser) {
		t.Error("HasAny should match any of several allowed roles")
	}
	if HasAny(roles, RoleAdmin, RoleManager) {
		t.Error("HasAny matched roles the user does not hold")
	}
	if HasAny(nil, RoleAdmin) {
		t.Error("HasAny on empty role set should be false")
	}
}

func TestFromStringsSkipsUnknown(t *testing.T) {
	got := FromStrings([]string{"USER", "bogus", "ADMIN"})
	if len(got) != 2 || got[0] != RoleUser || got[1] != RoleAdmin {
		t.Errorf("FromStrings = %v, want [USER ADMIN]", got)
	}
}

func TestStringsRoundTrip(t *testing.T) {
	roles := []Role{RoleInventoryManager, RoleUser}
	tags := Strings(roles)
	if len(tags) != 2 || tags[0] != "INVENTORY_MANAGER" || tags[1] != "USER" {
		t.Errorf("Strings = %v", tags)
	}
	back := FromStrings(tags)
	if len(back) != 2 || back[0] != roles[0] || back[1] != roles[1] {
		t.Errorf("round trip = %v", back)
	}
}
