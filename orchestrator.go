package sandbox

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/everydev1618/claude-sandbox/container"
	"github.com/everydev1618/claude-sandbox/internal/log"
)

// Paths inside the sandbox image.
const (
	containerHome      = "/home/claude"
	containerWorkspace = containerHome + "/workspace"
	interactiveProgram = "claude"
	shellProgram       = "bash"
)

// Decision is what the orchestrator does with a target container.
type Decision int

const (
	// Attach reuses the running container without touching the engine.
	Attach Decision = iota
	// Create provisions a container that does not exist yet.
	Create
	// Recreate removes the existing container, stopping it first if needed, then creates it.
	Recreate
)

func (d Decision) String() string {
	switch d {
	case Create:
		return "create"
	case Recreate:
		return "recreate"
	default:
		return "attach"
	}
}

// Decide maps the current container state to an action. confirmed is the
// operator's answer to "recreate with the requested ports?" and only matters
// for a running container with ports requested.
func Decide(state ContainerState, portsRequested, confirmed bool) Decision {
	switch state {
	case Absent:
		return Create
	case ExistsStopped:
		return Recreate
	default:
		if portsRequested && confirmed {
			return Recreate
		}
		return Attach
	}
}

// Confirmer obtains a yes/no answer from the operator.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Recorder journals lifecycle events.
type Recorder interface {
	Record(ctx context.Context, containerName, action, detail string) error
}

// Orchestrator runs the sandbox commands against an engine and a store.
type Orchestrator struct {
	engine   Engine
	prober   *Prober
	store    *Store
	resolver *Resolver
	confirm  Confirmer
	recorder Recorder
	settings Settings
	out      io.Writer

	beforeAttach func(Session)
	sleep        func(time.Duration)
	newID        func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConfirmer sets how destructive actions are confirmed. Without one,
// every confirmation is declined.
func WithConfirmer(c Confirmer) Option {
	return func(o *Orchestrator) { o.confirm = c }
}

// WithRecorder journals lifecycle events to r.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithSettings overrides DefaultSettings.
func WithSettings(s Settings) Option {
	return func(o *Orchestrator) { o.settings = s }
}

// WithOutput sets where progress lines are written.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

// WithBeforeAttach registers a hook called right before the interactive program starts.
func WithBeforeAttach(fn func(Session)) Option {
	return func(o *Orchestrator) { o.beforeAttach = fn }
}

// New creates an orchestrator.
func New(engine Engine, store *Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:   engine,
		prober:   NewProber(engine),
		store:    store,
		resolver: NewResolver(store),
		confirm:  declineAll{},
		settings: DefaultSettings(),
		out:      io.Discard,
		sleep:    time.Sleep,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type declineAll struct{}

func (declineAll) Confirm(string) (bool, error) { return false, nil }

// Session describes an interactive program about to be attached.
type Session struct {
	Container   string
	SessionName string
	Folders     []string
	Ports       []string
	Decision    Decision
}

// Invocation selects how the interactive program starts.
type Invocation struct {
	SkipPermissions bool
	Continue        bool
	Resume          string
	Picker          bool
	Prompt          string
}

// Argv returns the interactive program command line.
func (inv Invocation) Argv() []string {
	argv := []string{interactiveProgram}
	if inv.SkipPermissions {
		argv = append(argv, "--dangerously-skip-permissions")
	}
	switch {
	case inv.Continue:
		argv = append(argv, "-c")
	case inv.Resume != "":
		argv = append(argv, "-r", inv.Resume)
	case inv.Picker:
		argv = append(argv, "-r")
	}
	if inv.Prompt != "" {
		argv = append(argv, inv.Prompt)
	}
	return argv
}

// RunRequest is the operator's intent for the run command.
type RunRequest struct {
	Folders         []string
	Container       string
	SessionName     string
	Ports           []string
	Memory          string
	CPUs            string
	Env             []string
	Prompt          string
	SkipPermissions bool
	Continue        bool
	Resume          string
}

// RunResult reports what a run did.
type RunResult struct {
	Container      string
	Decision       Decision
	Aborted        bool
	ConversationID string
	Detected       bool
}

// Run attaches to, recreates or creates the container for req.Folders and
// hands the terminal to the interactive program.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	ports, err := NormalizePorts(req.Ports)
	if err != nil {
		return nil, err
	}
	for _, f := range req.Folders {
		if _, err := Canonicalize(f); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFolderUnavailable, f)
		}
	}

	name := req.Container
	if name == "" {
		if name, err = DeriveName(req.Folders); err != nil {
			return nil, err
		}
	}
	res := &RunResult{Container: name}

	if err := o.preflight(ctx); err != nil {
		return nil, err
	}

	state, err := o.prober.State(ctx, name)
	if err != nil {
		return nil, err
	}

	if req.SessionName != "" {
		existing, ok, err := o.store.NamedSession(req.SessionName)
		if err != nil {
			return nil, err
		}
		if ok {
			o.printf("Session '%s' already exists (conversation: %s)\n", req.SessionName, ShortID(existing))
			yes, err := o.confirm.Confirm("Overwrite with new session?")
			if err != nil {
				return nil, err
			}
			if !yes {
				o.printf("Use 'continue -n %s' to resume it.\n", req.SessionName)
				res.Aborted = true
				return res, nil
			}
		}
	}

	confirmed := false
	if state == ExistsRunning && len(ports) > 0 {
		o.printf("Container '%s' is already running.\n", name)
		if confirmed, err = o.confirm.Confirm(fmt.Sprintf("Recreate with ports %s?", strings.Join(req.Ports, ", "))); err != nil {
			return nil, err
		}
		if !confirmed {
			o.printf("Attaching without port changes...\n")
		}
	}
	res.Decision = Decide(state, len(ports) > 0, confirmed)
	log.Info().Str("container", name).Str("state", state.String()).Str("decision", res.Decision.String()).Msg("run decision")

	inv := Invocation{
		SkipPermissions: req.SkipPermissions || o.settings.SkipPermissions,
		Continue:        req.Continue,
		Resume:          req.Resume,
		Prompt:          req.Prompt,
	}

	switch res.Decision {
	case Attach:
		o.printf("Container '%s' is already running, attaching...\n", name)
		inv.Continue = true
		o.record(ctx, name, "attach", "")
	case Create, Recreate:
		if err := o.ensureImage(ctx); err != nil {
			return nil, err
		}
		if state == ExistsRunning {
			o.printf("Stopping existing container '%s'...\n", name)
			if err := o.engine.Stop(ctx, name); err != nil {
				return nil, err
			}
		}
		if state != Absent {
			if err := o.engine.Remove(ctx, name, false); err != nil {
				return nil, err
			}
		}
		provisionID, err := o.provision(ctx, name, req, ports)
		if err != nil {
			return nil, err
		}
		if _, err := o.store.RegisterContainer(name, req.Folders); err != nil {
			return nil, err
		}
		o.record(ctx, name, res.Decision.String(),
			fmt.Sprintf("%s provision=%s", strings.Join(CanonicalFolders(req.Folders), ":"), provisionID))
	}

	if err := o.store.SaveLastSession(name); err != nil {
		return nil, err
	}

	if o.beforeAttach != nil {
		o.beforeAttach(Session{
			Container:   name,
			SessionName: req.SessionName,
			Folders:     req.Folders,
			Ports:       ports,
			Decision:    res.Decision,
		})
	}
	if err := o.engine.ExecInteractive(ctx, name, inv.Argv()); err != nil {
		return nil, err
	}

	if req.SessionName != "" {
		if err := o.bindSession(ctx, name, req.SessionName, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (o *Orchestrator) bindSession(ctx context.Context, name, sessionName string, res *RunResult) error {
	id, ok := DetectConversation(ctx, o.engine, name)
	if !ok {
		log.Warn().Str("container", name).Str("session", sessionName).Msg("no conversation detected")
		return nil
	}
	if err := o.store.SaveNamedSession(sessionName, id); err != nil {
		return err
	}
	res.ConversationID = id
	res.Detected = true
	o.record(ctx, name, "session", sessionName+"="+id)
	return nil
}

// provision creates the container with its mounts, limits, ports and
// environment, then waits for it to settle. It returns the provision id
// labelled on the container.
func (o *Orchestrator) provision(ctx context.Context, name string, req RunRequest, ports []string) (string, error) {
	layout := o.store.Layout()
	if err := layout.PrepareContainerState(name); err != nil {
		return "", err
	}

	mounts := make([]container.Mount, 0, len(req.Folders)+5)
	for _, f := range req.Folders {
		abs, err := Canonicalize(f)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrFolderUnavailable, f)
		}
		mounts = append(mounts, container.Mount{
			Source: abs,
			Target: containerWorkspace + "/" + filepath.Base(abs),
		})
	}
	mounts = append(mounts,
		container.Mount{Source: layout.SharedClaudeDir(), Target: containerHome + "/.claude"},
		container.Mount{Source: layout.ConversationsDir(name), Target: ConversationRoot},
		container.Mount{Source: layout.ClaudeJSONPath(), Target: containerHome + "/.claude.json"},
		container.Mount{Source: layout.ClaudeJSONBackupPath(), Target: containerHome + "/.claude.json.backup"},
		container.Mount{Source: layout.SharedConfigDir(), Target: containerHome + "/.config"},
	)

	env := []string{"ANTHROPIC_API_KEY", "TERM=xterm-256color"}
	env = append(env, o.settings.Env...)
	env = append(env, req.Env...)

	provisionID := o.newID()
	spec := container.Spec{
		Name:    name,
		Image:   o.settings.Image,
		Mounts:  mounts,
		Memory:  firstNonEmpty(req.Memory, o.settings.Memory),
		CPUs:    firstNonEmpty(req.CPUs, o.settings.CPUs),
		Ports:   ports,
		Env:     env,
		Network: o.settings.Network,
		Labels:  map[string]string{container.LabelProvision: provisionID},
	}
	if req.SessionName != "" {
		o.printf("Starting new session '%s' in container '%s'...\n", req.SessionName, name)
	} else {
		o.printf("Starting new container '%s'...\n", name)
	}
	if err := o.engine.Create(ctx, spec); err != nil {
		return "", err
	}
	o.sleep(o.settings.Settle())
	return provisionID, nil
}

// Continue attaches to a running container, resuming the conversation bound
// to sessionName or else the most recent one.
func (o *Orchestrator) Continue(ctx context.Context, target, sessionName string) (string, error) {
	name, err := o.attachable(ctx, target)
	if err != nil {
		return "", err
	}

	inv := Invocation{Continue: true}
	if sessionName != "" {
		id, ok, err := o.store.NamedSession(sessionName)
		if err != nil {
			return name, err
		}
		if !ok {
			return name, &SessionError{Name: sessionName, Err: ErrSessionNotFound}
		}
		o.printf("Resuming session '%s' (conversation: %s) in container '%s'...\n", sessionName, ShortID(id), name)
		inv = Invocation{Resume: id}
	} else {
		o.printf("Continuing last conversation in container '%s'...\n", name)
	}
	o.record(ctx, name, "attach", sessionName)
	return name, o.engine.ExecInteractive(ctx, name, inv.Argv())
}

// Resume attaches to a running container and resumes conversationID, or
// opens the conversation picker when it is empty.
func (o *Orchestrator) Resume(ctx context.Context, target, conversationID string) (string, error) {
	name, err := o.attachable(ctx, target)
	if err != nil {
		return "", err
	}
	if conversationID != "" {
		o.printf("Resuming conversation '%s' in container '%s'...\n", conversationID, name)
	} else {
		o.printf("Opening conversation picker in container '%s'...\n", name)
	}
	o.record(ctx, name, "attach", conversationID)
	inv := Invocation{Resume: conversationID, Picker: conversationID == ""}
	return name, o.engine.ExecInteractive(ctx, name, inv.Argv())
}

// Shell opens a shell in a running container.
func (o *Orchestrator) Shell(ctx context.Context, target string) (string, error) {
	name, err := o.attachable(ctx, target)
	if err != nil {
		return "", err
	}
	o.printf("Opening shell in container '%s'...\n", name)
	return name, o.engine.ExecInteractive(ctx, name, []string{shellProgram})
}

// attachable resolves target, requires it to be running and records it as the last session.
func (o *Orchestrator) attachable(ctx context.Context, target string) (string, error) {
	name, err := o.resolver.Resolve(target)
	if err != nil {
		return "", err
	}
	if err := o.preflight(ctx); err != nil {
		return name, err
	}
	state, err := o.prober.State(ctx, name)
	if err != nil {
		return name, err
	}
	switch state {
	case Absent:
		return name, &ContainerError{Container: name, Err: ErrContainerMissing}
	case ExistsStopped:
		return name, &ContainerError{Container: name, Err: ErrContainerNotRunning}
	}
	if err := o.store.SaveLastSession(name); err != nil {
		return name, err
	}
	return name, nil
}

// Stop stops and removes the container target resolves to.
func (o *Orchestrator) Stop(ctx context.Context, target string) (string, error) {
	name, err := o.resolver.Resolve(target)
	if err != nil {
		return "", err
	}
	if err := o.preflight(ctx); err != nil {
		return name, err
	}
	state, err := o.prober.State(ctx, name)
	if err != nil {
		return name, err
	}
	if state == Absent {
		return name, &ContainerError{Container: name, Err: ErrContainerMissing}
	}
	o.printf("Stopping container '%s'...\n", name)
	if state == ExistsRunning {
		if err := o.engine.Stop(ctx, name); err != nil {
			return name, err
		}
	}
	if err := o.engine.Remove(ctx, name, false); err != nil {
		return name, err
	}
	o.record(ctx, name, "stop", "")
	return name, nil
}

// StopAll stops and force-removes every container built from the sandbox
// image. Failures on individual containers are logged and skipped.
func (o *Orchestrator) StopAll(ctx context.Context) ([]string, error) {
	if err := o.preflight(ctx); err != nil {
		return nil, err
	}
	list, err := o.engine.List(ctx, o.settings.Image)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, c := range list {
		o.printf("  Removing '%s'...\n", c.Name)
		if c.State == "running" {
			if err := o.engine.Stop(ctx, c.Name); err != nil {
				log.Warn().Err(err).Str("container", c.Name).Msg("stop failed")
			}
		}
		if err := o.engine.Remove(ctx, c.Name, true); err != nil {
			log.Warn().Err(err).Str("container", c.Name).Msg("remove failed")
		}
		o.record(ctx, c.Name, "stop", "all")
		names = append(names, c.Name)
	}
	return names, nil
}

// Status reports the state of the container target resolves to. A missing
// container is reported, not an error.
func (o *Orchestrator) Status(ctx context.Context, target string) (Status, error) {
	name, err := o.resolver.Resolve(target)
	if err != nil {
		return Status{}, err
	}
	if err := o.preflight(ctx); err != nil {
		return Status{Container: name}, err
	}
	return o.prober.Status(ctx, name)
}

// Listing is everything the list command shows.
type Listing struct {
	Containers  []container.Summary
	LastSession string
	Folders     []ContainerEntry
	Sessions    map[string]string
	Warnings    []string
}

// List collects containers, the last used container, folder mappings and named sessions.
func (o *Orchestrator) List(ctx context.Context) (*Listing, error) {
	if err := o.preflight(ctx); err != nil {
		return nil, err
	}
	containers, err := o.engine.List(ctx, o.settings.Image)
	if err != nil {
		return nil, err
	}
	last, err := o.store.LastSession()
	if err != nil {
		return nil, err
	}
	folders, err := o.store.LoadFolders()
	if err != nil {
		return nil, err
	}
	sessions, err := o.store.LoadSessions()
	if err != nil {
		return nil, err
	}

	l := &Listing{
		Containers:  containers,
		LastSession: last,
		Sessions:    sessions.Sessions,
	}
	for _, k := range folders.Keys() {
		l.Folders = append(l.Folders, folders.Folders[k])
	}
	if err := o.store.Check(); err != nil {
		l.Warnings = append(l.Warnings, err.Error())
	}
	return l, nil
}

// Build writes the Dockerfile into the configuration root and builds the image.
func (o *Orchestrator) Build(ctx context.Context, noCache bool, progress io.Writer) error {
	if err := o.preflight(ctx); err != nil {
		return err
	}
	return o.build(ctx, noCache, progress)
}

func (o *Orchestrator) build(ctx context.Context, noCache bool, progress io.Writer) error {
	layout := o.store.Layout()
	if err := layout.EnsureHome(); err != nil {
		return err
	}
	if err := os.WriteFile(layout.DockerfilePath(), container.Dockerfile, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}
	o.printf("Building Claude Code sandbox image...\n")
	return o.engine.BuildImage(ctx, container.BuildOptions{
		Tag:        o.settings.Image,
		Dockerfile: container.Dockerfile,
		NoCache:    noCache,
		Out:        progress,
	})
}

func (o *Orchestrator) ensureImage(ctx context.Context) error {
	ok, err := o.engine.ImageExists(ctx, o.settings.Image)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	o.printf("Image not found, building...\n")
	return o.build(ctx, false, o.out)
}

// preflight fails fast when the engine is down.
func (o *Orchestrator) preflight(ctx context.Context) error {
	if err := o.engine.Ping(ctx); err != nil {
		log.Debug().Err(err).Msg("engine liveness probe failed")
		return ErrEngineUnreachable
	}
	return nil
}

func (o *Orchestrator) record(ctx context.Context, name, action, detail string) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, name, action, detail); err != nil {
		log.Warn().Err(err).Str("container", name).Str("action", action).Msg("history record failed")
	}
}

func (o *Orchestrator) printf(format string, args ...any) {
	fmt.Fprintf(o.out, format, args...)
}

// ShortID abbreviates a conversation identity for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
