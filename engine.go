package sandbox

import (
	"context"

	"github.com/everydev1618/claude-sandbox/container"
)

// Engine is the container runtime the orchestrator drives.
// *container.Manager is the production implementation.
type Engine interface {
	Ping(ctx context.Context) error
	ImageExists(ctx context.Context, image string) (bool, error)
	BuildImage(ctx context.Context, opts container.BuildOptions) error
	Inspect(ctx context.Context, name string) (container.State, error)
	Create(ctx context.Context, spec container.Spec) error
	Stop(ctx context.Context, name string) error
	Remove(ctx context.Context, name string, force bool) error
	List(ctx context.Context, image string) ([]container.Summary, error)
	ListDirs(ctx context.Context, name, dir string) ([]container.DirEntry, error)
	ExecInteractive(ctx context.Context, name string, argv []string) error
}

var _ Engine = (*container.Manager)(nil)

// ContainerState is the lifecycle state of a container identity.
type ContainerState int

const (
	Absent ContainerState = iota
	ExistsStopped
	ExistsRunning
)

func (s ContainerState) String() string {
	switch s {
	case ExistsStopped:
		return "stopped"
	case ExistsRunning:
		return "running"
	default:
		return "absent"
	}
}

// Status is the engine's view of one container.
type Status struct {
	Container string
	Exists    bool
	Running   bool
	Status    string
}

// Prober answers state queries about container identities.
type Prober struct {
	engine Engine
}

// NewProber creates a prober over engine.
func NewProber(engine Engine) *Prober {
	return &Prober{engine: engine}
}

// Exists reports whether a container named name exists.
func (p *Prober) Exists(ctx context.Context, name string) (bool, error) {
	st, err := p.engine.Inspect(ctx, name)
	return st.Exists, err
}

// Running reports whether the container is running.
func (p *Prober) Running(ctx context.Context, name string) (bool, error) {
	st, err := p.engine.Inspect(ctx, name)
	return st.Exists && st.Running, err
}

// Status returns the engine status string and running flag.
func (p *Prober) Status(ctx context.Context, name string) (Status, error) {
	st, err := p.engine.Inspect(ctx, name)
	if err != nil {
		return Status{Container: name}, err
	}
	return Status{Container: name, Exists: st.Exists, Running: st.Running, Status: st.Status}, nil
}

// State folds the inspection into Absent, ExistsStopped or ExistsRunning.
func (p *Prober) State(ctx context.Context, name string) (ContainerState, error) {
	st, err := p.engine.Inspect(ctx, name)
	if err != nil {
		return Absent, err
	}
	switch {
	case !st.Exists:
		return Absent, nil
	case st.Running:
		return ExistsRunning, nil
	default:
		return ExistsStopped, nil
	}
}
