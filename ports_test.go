package sandbox

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizePort(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"3000", "3000:3000", false},
		{"8080:3000", "8080:3000", false},
		{"127.0.0.1:8080:3000", "127.0.0.1:8080:3000", false},
		{"0", "0:0", false},
		{"65535", "65535:65535", false},
		{"65536", "", true},
		{"abc", "", true},
		{"", "", true},
		{"-1", "", true},
		{"8080:", "", true},
		{"x:3000", "", true},
		{"1.2.3.4:x:3000", "", true},
		{"1:2:3:4", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizePort(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizePort(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizePort(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if err != nil && !errors.Is(err, ErrInvalidPortSpec) {
				t.Errorf("error %v should wrap ErrInvalidPortSpec", err)
			}
		})
	}
}

func TestNormalizePortsFailsFast(t *testing.T) {
	_, err := NormalizePorts([]string{"3000", "bogus", "4000"})
	var pe *PortSpecError
	if !errors.As(err, &pe) {
		t.Fatalf("NormalizePorts() error = %v, want *PortSpecError", err)
	}
	if pe.Spec != "bogus" {
		t.Errorf("Spec = %q, want %q", pe.Spec, "bogus")
	}
	if !strings.Contains(err.Error(), "IP:HOST:CONTAINER") {
		t.Errorf("error %q should show accepted forms", err)
	}
}
