package container

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/docker/go-units"

	"github.com/everydev1618/claude-sandbox/internal/log"
)

const (
	DefaultImage    = "claude-code-sandbox"
	DefaultNetwork  = "bridge"
	LabelManagedBy  = "claude-sandbox.managed-by"
	LabelProvision  = "claude-sandbox.provision-id"
	managedByValue  = "claude-sandbox"
	stopTimeoutSecs = 10
)

// ErrUnavailable is returned when no Docker daemon could be reached.
var ErrUnavailable = errors.New("docker not available")

// Manager is the Docker side of the sandbox: it probes, creates, stops and
// removes containers and runs commands inside them.
type Manager struct {
	client    *client.Client
	host      string
	dockerBin string
	available bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDockerBinary sets the docker CLI used for interactive sessions.
func WithDockerBinary(path string) ManagerOption {
	return func(m *Manager) {
		m.dockerBin = path
	}
}

// NewManager creates a new container manager.
// If Docker is unavailable, it returns a Manager whose Ping fails.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{dockerBin: "docker"}
	for _, opt := range opts {
		opt(m)
	}

	cli, host, err := createDockerClient()
	if err != nil {
		log.Debug().Err(err).Msg("docker client unavailable")
		return m
	}
	m.client = cli
	m.host = host
	m.available = true
	return m
}

// createDockerClient creates a Docker client, trying multiple socket locations
// for compatibility with Docker Desktop on macOS.
func createDockerClient() (*client.Client, string, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err == nil {
		if pingClient(cli) == nil {
			return cli, "", nil
		}
		cli.Close()
	}
	if os.Getenv("DOCKER_HOST") != "" {
		return nil, "", fmt.Errorf("could not connect to Docker daemon at %s", os.Getenv("DOCKER_HOST"))
	}

	home := os.Getenv("HOME")
	socketPaths := []string{
		"unix://" + home + "/.docker/run/docker.sock", // Docker Desktop macOS
		"unix:///var/run/docker.sock",                 // Linux default
		"unix://" + home + "/.colima/docker.sock",     // Colima
	}
	for _, socketPath := range socketPaths {
		cli, err := client.NewClientWithOpts(
			client.WithHost(socketPath),
			client.WithAPIVersionNegotiation(),
		)
		if err != nil {
			continue
		}
		if pingClient(cli) == nil {
			return cli, socketPath, nil
		}
		cli.Close()
	}

	return nil, "", fmt.Errorf("could not connect to Docker daemon")
}

func pingClient(cli *client.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := cli.Ping(ctx)
	return err
}

// Ping checks that the daemon answers.
func (m *Manager) Ping(ctx context.Context) error {
	if !m.available {
		return ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := m.client.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ImageExists reports whether the image is present locally.
func (m *Manager) ImageExists(ctx context.Context, image string) (bool, error) {
	if !m.available {
		return false, ErrUnavailable
	}
	_, _, err := m.client.ImageInspectWithRaw(ctx, image)
	if err == nil {
		return true, nil
	}
	if client.IsErrNotFound(err) {
		return false, nil
	}
	return false, err
}

// State is what the engine knows about a named container.
type State struct {
	Exists  bool
	Running bool
	Status  string
}

// Inspect returns the state of a container. A missing container is not an error.
func (m *Manager) Inspect(ctx context.Context, name string) (State, error) {
	if !m.available {
		return State{}, ErrUnavailable
	}
	info, err := m.client.ContainerInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("inspect %s: %w", name, err)
	}
	st := State{Exists: true}
	if info.State != nil {
		st.Running = info.State.Running
		st.Status = info.State.Status
	}
	return st, nil
}

// Mount is a host path bound into the container.
type Mount struct {
	Source string
	Target string
}

// Spec describes a container to provision.
type Spec struct {
	Name    string
	Image   string
	Mounts  []Mount
	Memory  string
	CPUs    string
	Ports   []string // HOST:CONTAINER or IP:HOST:CONTAINER
	Env     []string // K=V, or K to pass the host value through
	Network string
	Labels  map[string]string
}

// Create creates and starts a detached container.
func (m *Manager) Create(ctx context.Context, spec Spec) error {
	if !m.available {
		return ErrUnavailable
	}
	cfg, hostCfg, err := containerConfigs(spec, os.LookupEnv)
	if err != nil {
		return err
	}

	resp, err := m.client.ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	if err := m.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	log.Info().Str("container", spec.Name).Str("id", shortID(resp.ID)).Msg("container started")
	return nil
}

func containerConfigs(spec Spec, lookup func(string) (string, bool)) (*container.Config, *container.HostConfig, error) {
	exposed, bindings, err := nat.ParsePortSpecs(spec.Ports)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid port mapping: %w", err)
	}
	resources, err := parseResources(spec.Memory, spec.CPUs)
	if err != nil {
		return nil, nil, err
	}

	labels := map[string]string{LabelManagedBy: managedByValue}
	for k, v := range spec.Labels {
		labels[k] = v
	}

	network := spec.Network
	if network == "" {
		network = DefaultNetwork
	}

	cfg := &container.Config{
		Image:        spec.Image,
		Env:          expandEnv(spec.Env, lookup),
		Labels:       labels,
		ExposedPorts: exposed,
	}

	mounts := make([]mount.Mount, 0, len(spec.Mounts))
	for _, mt := range spec.Mounts {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: mt.Source,
			Target: mt.Target,
		})
	}

	hostCfg := &container.HostConfig{
		Mounts:       mounts,
		PortBindings: bindings,
		NetworkMode:  container.NetworkMode(network),
		Resources:    resources,
	}
	return cfg, hostCfg, nil
}

// parseResources converts docker CLI style limits ("4g", "1.5") to API values.
func parseResources(memory, cpus string) (container.Resources, error) {
	var res container.Resources
	if memory != "" {
		b, err := units.RAMInBytes(memory)
		if err != nil {
			return res, fmt.Errorf("invalid memory limit %q: %w", memory, err)
		}
		res.Memory = b
	}
	if cpus != "" {
		f, err := strconv.ParseFloat(cpus, 64)
		if err != nil || f <= 0 {
			return res, fmt.Errorf("invalid cpu limit %q", cpus)
		}
		res.NanoCPUs = int64(f * 1e9)
	}
	return res, nil
}

// expandEnv resolves bare KEY entries from the host environment. Unset keys are dropped.
func expandEnv(env []string, lookup func(string) (string, bool)) []string {
	out := make([]string, 0, len(env))
	for _, e := range env {
		if strings.Contains(e, "=") {
			out = append(out, e)
			continue
		}
		if v, ok := lookup(e); ok {
			out = append(out, e+"="+v)
		}
	}
	return out
}

// Stop stops a running container.
func (m *Manager) Stop(ctx context.Context, name string) error {
	if !m.available {
		return ErrUnavailable
	}
	timeout := stopTimeoutSecs
	if err := m.client.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("stop %s: %w", name, err)
	}
	log.Info().Str("container", name).Msg("container stopped")
	return nil
}

// Remove deletes a container.
func (m *Manager) Remove(ctx context.Context, name string, force bool) error {
	if !m.available {
		return ErrUnavailable
	}
	if err := m.client.ContainerRemove(ctx, name, container.RemoveOptions{Force: force}); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	log.Info().Str("container", name).Bool("force", force).Msg("container removed")
	return nil
}

// Summary is one row of the container listing.
type Summary struct {
	Name    string
	Status  string
	State   string
	Ports   string
	Created time.Time
}

// List returns all containers created from image, running or not.
func (m *Manager) List(ctx context.Context, image string) ([]Summary, error) {
	if !m.available {
		return nil, ErrUnavailable
	}
	containers, err := m.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("ancestor", image)),
	})
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(containers))
	for _, c := range containers {
		out = append(out, Summary{
			Name:    containerName(c.Names),
			Status:  c.Status,
			State:   c.State,
			Ports:   formatPorts(c.Ports),
			Created: time.Unix(c.Created, 0),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func containerName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}

func formatPorts(ports []types.Port) string {
	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		if p.PublicPort == 0 {
			parts = append(parts, fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
			continue
		}
		ip := p.IP
		if ip == "" {
			ip = "0.0.0.0"
		}
		parts = append(parts, fmt.Sprintf("%s:%d->%d/%s", ip, p.PublicPort, p.PrivatePort, p.Type))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// Close closes the Docker client.
func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
