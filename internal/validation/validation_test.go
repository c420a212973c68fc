package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{"ana@example.com", "  Bruno.Silva+obra@empresa.com.br "}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}

	invalid := []string{"", "ana", "ana@@example.com", "ana@example", "an a@example.com"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", email)
		}
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"João da Silva", "Ana-Clara", "D'Ávila"} {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}
	for _, name := range []string{"", "A", "R2D2"} {
		if err := ValidateName(name); err == nil {
			t.Errorf("ValidateName(%q) = nil, want error", name)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	if err := ValidatePhone("+55 (11) 91234-5678"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidatePhone("12345"); err == nil {
		t.Fatalf("expected error for short phone")
	}
	if err := ValidatePhone("11 9123x5678"); err == nil {
		t.Fatalf("expected error for letters")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := map[string]bool{
		"Senha123":   true,
		"short1A":    false,
		"semnumeroA": false,
		"SEMMINUS1":  false,
		"semmaius1":  false,
	}
	for password, ok := range cases {
		err := ValidatePassword(password)
		if ok && err != nil {
			t.Errorf("ValidatePassword(%q) = %v, want nil", password, err)
		}
		if !ok && err == nil {
			t.Errorf("ValidatePassword(%q) = nil, want error", password)
		}
	}
}
