// Package container is the Docker side of claude-sandbox.
//
// A Manager talks to the daemon through the Docker SDK for everything that
// can be done without a terminal: liveness, image and container inspection,
// image builds, creating, stopping, removing and listing containers, and
// short non-interactive commands. Attaching the operator's terminal to a
// program inside a container goes through the docker CLI ("docker exec -it"),
// which owns TTY handling.
//
// # Example
//
//	m := container.NewManager()
//	defer m.Close()
//
//	if err := m.Ping(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	st, err := m.Inspect(ctx, "claude-app")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !st.Exists {
//	    err = m.Create(ctx, container.Spec{
//	        Name:  "claude-app",
//	        Image: container.DefaultImage,
//	        Mounts: []container.Mount{
//	            {Source: "/src/app", Target: "/home/claude/workspace/app"},
//	        },
//	        Ports: []string{"3000:3000"},
//	    })
//	}
package container
