package topology

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Porch", false},
		{"with spaces", "Front Door", false},
		{"unicode", "Küche", false},
		{"at limit", strings.Repeat("x", 100), false},
		{"empty", "", true},
		{"over limit", strings.Repeat("x", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr && !errors.Is(err, ErrInvalidValue) {
				t.Errorf("ValidateName(%q) = %v, want ErrInvalidValue", tt.input, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateName(%q) = %v, want nil", tt.input, err)
			}
		})
	}
}

func TestValidatePin(t *testing.T) {
	valid := []string{"0000", "1234", "123456789012"}
	for _, pin := range valid {
		if err := ValidatePin(pin); err != nil {
			t.Errorf("ValidatePin(%q) = %v, want nil", pin, err)
		}
	}

	invalid := []string{"", "123", "12a4", "12.4", " 1234", "1234 ", "12345\n"}
	for _, pin := range invalid {
		if err := ValidatePin(pin); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("ValidatePin(%q) = %v, want ErrInvalidValue", pin, err)
		}
	}
}

func TestValidateDimmerRange(t *testing.T) {
	if err := ValidateDimmerRange(0, 100, 1); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
	if err := ValidateDimmerRange(50, 50, 1); err != nil {
		t.Errorf("degenerate range rejected: %v", err)
	}
	if err := ValidateDimmerRange(100, 0, 1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("inverted range = %v, want ErrInvalidValue", err)
	}
	if err := ValidateDimmerRange(0, 100, 0); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("zero scale = %v, want ErrInvalidValue", err)
	}
}

func TestValidateSetPoints(t *testing.T) {
	if err := ValidateSetPoints(2000, 2500); err != nil {
		t.Errorf("valid set points rejected: %v", err)
	}
	if err := ValidateSetPoints(2200, 2200); err != nil {
		t.Errorf("equal set points rejected: %v", err)
	}
	if err := ValidateSetPoints(2500, 2000); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("inverted set points = %v, want ErrInvalidValue", err)
	}
}

func TestKindPredicates(t *testing.T) {
	for _, k := range DeviceKinds() {
		if !k.IsDevice() || !k.Valid() {
			t.Errorf("%s should be a valid device kind", k)
		}
	}
	if KindDwelling.IsDevice() || KindHub.IsDevice() {
		t.Error("places are not devices")
	}
	if !KindDwelling.Valid() || !KindHub.Valid() {
		t.Error("places are valid kinds")
	}
	if Kind("toaster").Valid() {
		t.Error("unknown kind accepted")
	}
}
