package common

import "testing"

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"eng", true},
		{"eng+deu", true},
		{"chi_sim", true},
		{"-l", false},
		{"eng+", false},
		{"eng deu", false},
		{"../eng", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := LanguageCode("lang", tt.in) == nil
			if got != tt.want {
				t.Errorf("LanguageCode(%q) ok = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidatorCollectsErrors(t *testing.T) {
	v := NewValidator().
		Field("filename", "", Required, Filename).
		Field("lang", "e ng", LanguageCode, MaxLength(64))

	if !v.HasErrors() {
		t.Fatal("expected errors")
	}
	if n := len(v.Errors()); n != 3 {
		t.Errorf("got %d errors, want 3: %s", n, v.ErrorMessage())
	}
	if !IsValidationError(v.Error()) {
		t.Errorf("Error() should wrap ErrValidation")
	}
	if SanitizeError(v.Error()) != v.ErrorMessage() {
		t.Errorf("validation message should reach the client unchanged")
	}
}

func TestValidatorNoErrors(t *testing.T) {
	v := NewValidator().Field("filename", "resume.pdf", Required, Filename)
	if v.HasErrors() || v.Error() != nil {
		t.Fatalf("unexpected errors: %s", v.ErrorMessage())
	}
}
