package domain

import "testing"

func TestParseRoleIgnoresCase(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"Customer", RoleCustomer, true},
		{"ADMIN", RoleAdmin, true},
		{" serviceprovider ", RoleServiceProvider, true},
		{"Service-Provider", RoleServiceProvider, true},
		{"third-party", RoleThirdParty, true},
		{"Manager", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseRole(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRoleFromClaimIsExact(t *testing.T) {
	if r, ok := RoleFromClaim("Admin"); !ok || r != RoleAdmin {
		t.Fatalf("expected Admin to match")
	}
	for _, claim := range []string{"admin", "ADMIN", " Admin", "service-provider"} {
		if _, ok := RoleFromClaim(claim); ok {
			t.Fatalf("RoleFromClaim(%q) matched", claim)
		}
	}
}

func TestHomePath(t *testing.T) {
	want := map[Role]string{
		RoleCustomer:        PathCustomerDashboard,
		RoleAdmin:           PathAdmin,
		RoleServiceProvider: PathServiceProvider,
		RoleThirdParty:      PathThirdParty,
	}
	for role, path := range want {
		if got := role.HomePath(); got != path {
			t.Fatalf("%s.HomePath() = %q, want %q", role, got, path)
		}
	}
	if got := Role("Manager").SectionPath(); got != PathLanding {
		t.Fatalf("unknown role section = %q", got)
	}
}

func TestCachedUserAccessors(t *testing.T) {
	var empty CachedUser
	if empty.ID() != "" || empty.Token() != "" {
		t.Fatalf("nil user must read empty")
	}
	u := CachedUser{"id": "u-1", "token": "t", "role": "Admin"}
	if u.ID() != "u-1" || u.Token() != "t" {
		t.Fatalf("accessors = %q %q", u.ID(), u.Token())
	}
	if (CachedUser{"id": 42}).ID() != "" {
		t.Fatalf("non-string id must read empty")
	}
}
