package util

import "testing"

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"a@b.co", "user.name+tag@example.com"}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}
	invalid := []string{"", "plain", "a@b", "@example.com", "user@.com"}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	if ValidateUsername("ab") {
		t.Error("two characters should be too short")
	}
	if !ValidateUsername("abc") {
		t.Error("three characters should be valid")
	}
	long := make([]byte, 31)
	for i := range long {
		long[i] = 'a'
	}
	if ValidateUsername(string(long)) {
		t.Error("31 characters should be too long")
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if !ValidatePassword("Abcdef1!") {
		t.Error("expected password with all classes to be valid")
	}
	weak := []string{"short1!", "alllowercase1!", "ALLUPPERCASE1!", "NoDigits!!", "NoSpecial11"}
	for _, pw := range weak {
		if ValidatePassword(pw) {
			t.Errorf("expected %q to be invalid", pw)
		}
	}
}
