package validator

import "testing"

func TestCheckRecordsFirstFailure(t *testing.T) {
	v := New()
	v.Check(false, "email", "email is required")
	v.Check(false, "email", "email must be valid")
	v.Check(true, "name", "name is required")

	if v.Valid() {
		t.Fatal("expected validator to be invalid")
	}
	if v.Errors["email"] != "email is required" {
		t.Errorf("expected first failure to win, got %q", v.Errors["email"])
	}
	if _, ok := v.Errors["name"]; ok {
		t.Error("passing check must not record an error")
	}
}

func TestNotBlank(t *testing.T) {
	if NotBlank("   ") {
		t.Error("whitespace-only string is blank")
	}
	if !NotBlank("x") {
		t.Error("non-empty string is not blank")
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b+c@sub.example.org"}
	for _, email := range valid {
		if !ValidEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}

	invalid := []string{"", "plain", "@example.com", "alice@"}
	for _, email := range invalid {
		if ValidEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestLengthBetween(t *testing.T) {
	if !LengthBetween("abc", 1, 3) {
		t.Error("expected in-range length to pass")
	}
	if LengthBetween("abcd", 1, 3) {
		t.Error("expected over-length to fail")
	}
}
