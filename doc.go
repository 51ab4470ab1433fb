// Package sandbox gives each set of project folders a stable, reusable Docker
// container running Claude Code.
//
// It provides:
//
//   - Folder to container name derivation and an order-independent folder-set key
//   - Persistent registries for the last used container, folder sets and named sessions
//   - A resolver that turns a folder path, container name or folder name into a container
//   - A prober and a decision function choosing between attach, recreate and create
//   - An orchestrator that drives the container engine through those decisions
//   - Conversation detection to bind named sessions after an interactive run
//
// # Quick Start
//
//	store, err := sandbox.OpenDefaultStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	settings, err := sandbox.LoadSettings(store.Layout().Root)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	type alwaysYes struct{}
//
//	func (alwaysYes) Confirm(string) (bool, error) { return true, nil }
//
//	orch := sandbox.New(container.NewManager(), store,
//	    sandbox.WithSettings(settings),
//	    sandbox.WithConfirmer(alwaysYes{}),
//	    sandbox.WithOutput(os.Stdout),
//	)
//
//	res, err := orch.Run(ctx, sandbox.RunRequest{
//	    Folders: []string{"."},
//	    Ports:   []string{"3000"},
//	})
//
// # Decisions
//
// Run inspects the target container and picks one of three actions:
//
//	absent                          -> Create
//	exists, stopped                 -> Recreate
//	running, no ports requested     -> Attach
//	running, ports, declined        -> Attach
//	running, ports, confirmed       -> Recreate
//
// Without WithConfirmer every question is declined. Attach never touches the engine. Recreate stops a running container before
// removing it. Every path that reaches the interactive program records the
// container as the last session.
//
// # State
//
// All state lives under ~/.claude-sandbox, or CLAUDE_SANDBOX_CONFIG when set:
//
//	last_session            most recently addressed container
//	folder_registry.json    folder-set key -> container entry
//	named_sessions.json     session name -> conversation id
//	containers/<name>/      per-container conversation history
//	settings.toml           optional operator defaults
//	history.db              lifecycle journal
package sandbox
