package sandbox

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrConfigUnavailable is returned when the configuration root cannot be resolved or created.
	ErrConfigUnavailable = errors.New("configuration directory unavailable")

	// ErrEngineUnreachable is returned when the container engine does not answer the liveness probe.
	ErrEngineUnreachable = errors.New("docker is not running, please start docker and try again")

	// ErrInvalidPortSpec is returned for a port mapping that is not PORT, HOST:CONTAINER or IP:HOST:CONTAINER.
	ErrInvalidPortSpec = errors.New("invalid port format")

	// ErrNoDerivableName is returned when no folder yields a usable container name.
	ErrNoDerivableName = errors.New("could not derive container name from folders")

	// ErrRegistryCorrupt marks a persisted registry document that failed to parse.
	ErrRegistryCorrupt = errors.New("registry document is corrupt")

	// ErrContainerMissing is returned when an operation needs a container that does not exist.
	ErrContainerMissing = errors.New("container does not exist")

	// ErrContainerNotRunning is returned when an operation needs a running container.
	ErrContainerNotRunning = errors.New("container is not running")

	// ErrSessionNotFound is returned when a named session has no bound conversation.
	ErrSessionNotFound = errors.New("named session not found")

	// ErrFolderUnavailable is returned when a folder passed to run cannot be accessed.
	ErrFolderUnavailable = errors.New("cannot access folder")
)

// PortSpecError reports a rejected port mapping together with the offending input.
type PortSpecError struct {
	Spec   string
	Reason string
}

func (e *PortSpecError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s. Use PORT, HOST:CONTAINER, or IP:HOST:CONTAINER", ErrInvalidPortSpec, e.Spec)
	}
	return fmt.Sprintf("%s: %s (%s). Use PORT, HOST:CONTAINER, or IP:HOST:CONTAINER", ErrInvalidPortSpec, e.Spec, e.Reason)
}

func (e *PortSpecError) Unwrap() error {
	return ErrInvalidPortSpec
}

// ContainerError ties an error to the container identity it concerns.
type ContainerError struct {
	Container string
	Err       error
}

func (e *ContainerError) Error() string {
	msg := fmt.Sprintf("container '%s': %v", e.Container, e.Err)
	if errors.Is(e.Err, ErrContainerMissing) || errors.Is(e.Err, ErrContainerNotRunning) {
		msg += ". Use 'run' to start it."
	}
	return msg
}

func (e *ContainerError) Unwrap() error {
	return e.Err
}

// SessionError ties an error to a named session.
type SessionError struct {
	Name string
	Err  error
}

func (e *SessionError) Error() string {
	if errors.Is(e.Err, ErrSessionNotFound) {
		return fmt.Sprintf("named session '%s' not found. Use 'run -n %s' to create it.", e.Name, e.Name)
	}
	return fmt.Sprintf("session '%s': %v", e.Name, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
