package seal

import "testing"

func TestParseAccountID(t *testing.T) {
	id, err := ParseAccountID("0xd4f0c053205ba934bb2ac0c4e8479e77")
	if err != nil {
		t.Fatalf("ParseAccountID: %v", err)
	}
	if got, want := id.String(), "0xd4f0c053205ba934bb2ac0c4e8479e77"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	// Prefix is optional.
	same, err := ParseAccountID("d4f0c053205ba934bb2ac0c4e8479e77")
	if err != nil {
		t.Fatalf("ParseAccountID without prefix: %v", err)
	}
	if same != id {
		t.Fatalf("prefix handling changed the value")
	}

	for _, bad := range []string{"", "0x1234", "zz", "0xd4f0c053205ba934bb2ac0c4e8479e7700"} {
		if _, err := ParseAccountID(bad); err == nil {
			t.Fatalf("ParseAccountID(%q) should fail", bad)
		}
	}
}
