package sandbox

import (
	"errors"
	"fmt"
	"testing"
)

func TestStandardErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrConfigUnavailable", ErrConfigUnavailable, "configuration directory unavailable"},
		{"ErrEngineUnreachable", ErrEngineUnreachable, "docker is not running, please start docker and try again"},
		{"ErrInvalidPortSpec", ErrInvalidPortSpec, "invalid port format"},
		{"ErrNoDerivableName", ErrNoDerivableName, "could not derive container name from folders"},
		{"ErrRegistryCorrupt", ErrRegistryCorrupt, "registry document is corrupt"},
		{"ErrContainerMissing", ErrContainerMissing, "container does not exist"},
		{"ErrContainerNotRunning", ErrContainerNotRunning, "container is not running"},
		{"ErrSessionNotFound", ErrSessionNotFound, "named session not found"},
		{"ErrFolderUnavailable", ErrFolderUnavailable, "cannot access folder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("%s.Error() = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestPortSpecError(t *testing.T) {
	err := &PortSpecError{Spec: "abc", Reason: "invalid port number"}

	want := "invalid port format: abc (invalid port number). Use PORT, HOST:CONTAINER, or IP:HOST:CONTAINER"
	if got := err.Error(); got != want {
		t.Errorf("PortSpecError.Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidPortSpec) {
		t.Error("errors.Is(PortSpecError, ErrInvalidPortSpec) should be true")
	}

	bare := &PortSpecError{Spec: "1:2:3:4"}
	want = "invalid port format: 1:2:3:4. Use PORT, HOST:CONTAINER, or IP:HOST:CONTAINER"
	if got := bare.Error(); got != want {
		t.Errorf("PortSpecError.Error() = %q, want %q", got, want)
	}
}

func TestContainerError(t *testing.T) {
	err := &ContainerError{Container: "claude-app", Err: ErrContainerNotRunning}

	want := "container 'claude-app': container is not running. Use 'run' to start it."
	if got := err.Error(); got != want {
		t.Errorf("ContainerError.Error() = %q, want %q", got, want)
	}

	// Test Unwrap
	if got := err.Unwrap(); got != ErrContainerNotRunning {
		t.Errorf("ContainerError.Unwrap() = %v, want %v", got, ErrContainerNotRunning)
	}

	wrapped := fmt.Errorf("continue: %w", err)
	var ce *ContainerError
	if !errors.As(wrapped, &ce) || ce.Container != "claude-app" {
		t.Errorf("errors.As(wrapped) = %v", ce)
	}

	other := &ContainerError{Container: "x", Err: errors.New("boom")}
	if got := other.Error(); got != "container 'x': boom" {
		t.Errorf("ContainerError.Error() = %q", got)
	}
}

func TestSessionError(t *testing.T) {
	err := &SessionError{Name: "feature", Err: ErrSessionNotFound}

	want := "named session 'feature' not found. Use 'run -n feature' to create it."
	if got := err.Error(); got != want {
		t.Errorf("SessionError.Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrSessionNotFound) {
		t.Error("errors.Is(SessionError, ErrSessionNotFound) should be true")
	}
}
