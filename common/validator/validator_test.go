package validator

import "testing"

// ============================================================
// Test: Email Validation
// ============================================================

func TestEmailValidation(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid simple", "donor@example.com", true},
		{"valid with dots", "first.last@example.co.uk", true},
		{"valid with plus", "donor+tag@example.com", true},
		{"missing at", "donorexample.com", false},
		{"missing domain", "donor@", false},
		{"missing tld", "donor@example", false},
		{"empty", "", false},
		{"spaces", "do nor@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.valid {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.valid)
			}
		})
	}
}

// ============================================================
// Test: Phone Validation
// ============================================================

func TestPhoneValidation(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{"10 digits", "0123456789", true},
		{"15 digits", "012345678901234", true},
		{"too short", "012345678", false},
		{"too long", "0123456789012345", false},
		{"letters", "01234abcde", false},
		{"dashes", "012-345-6789", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidPhone(tt.phone); got != tt.valid {
				t.Errorf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.valid)
			}
		})
	}
}

// ============================================================
// Test: Blood Group Validation
// ============================================================

func TestBloodGroupValidation(t *testing.T) {
	valid := []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	for _, bg := range valid {
		if !IsValidBloodGroup(bg) {
			t.Errorf("IsValidBloodGroup(%q) = false, want true", bg)
		}
	}

	invalid := []string{"", "C+", "AB", "O", "A +", "ab+", "O++", "+A"}
	for _, bg := range invalid {
		if IsValidBloodGroup(bg) {
			t.Errorf("IsValidBloodGroup(%q) = true, want false", bg)
		}
	}
}

// ============================================================
// Test: Name Validation
// ============================================================

func TestNameValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "Jane Doe", true},
		{"apostrophe", "O'Connor", true},
		{"hyphen", "Mary-Jane Watson", true},
		{"unicode", "Nguyễn Văn An", true},
		{"single char", "J", false},
		{"digits", "Jane2 Doe", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidName(tt.input); got != tt.valid {
				t.Errorf("IsValidName(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}

// ============================================================
// Test: Error messages
// ============================================================

func TestErrorMessages(t *testing.T) {
	if msg := GetEmailError(""); msg != "Email is required" {
		t.Errorf("GetEmailError(\"\") = %q", msg)
	}
	if msg := GetEmailError("bad"); msg == "" {
		t.Error("expected error message for invalid email")
	}
	if msg := GetEmailError("donor@example.com"); msg != "" {
		t.Errorf("expected empty message for valid email, got %q", msg)
	}
	if msg := GetBloodGroupError("C+"); msg == "" {
		t.Error("expected error message for invalid blood group")
	}
	if msg := GetRequiredError("city", " "); msg != "city is required" {
		t.Errorf("GetRequiredError = %q", msg)
	}
}
