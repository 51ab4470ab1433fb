package container

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/everydev1618/claude-sandbox/internal/log"
)

// ExecResult holds the result of a command execution.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Exec runs a non-interactive command in a running container and collects its output.
func (m *Manager) Exec(ctx context.Context, name string, command []string) (*ExecResult, error) {
	if !m.available {
		return nil, ErrUnavailable
	}

	execResp, err := m.client.ContainerExecCreate(ctx, name, container.ExecOptions{
		Cmd:          command,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exec: %w", err)
	}

	attachResp, err := m.client.ContainerExecAttach(ctx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to attach exec: %w", err)
	}
	defer attachResp.Close()

	var stdout, stderr strings.Builder
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attachResp.Reader); err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}

	inspectResp, err := m.client.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect exec: %w", err)
	}

	return &ExecResult{
		ExitCode: inspectResp.ExitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// DirEntry is an immediate subdirectory and its modification time.
type DirEntry struct {
	Name    string
	ModTime time.Time
}

// ListDirs lists the immediate subdirectories of dir inside a container.
func (m *Manager) ListDirs(ctx context.Context, name, dir string) ([]DirEntry, error) {
	res, err := m.Exec(ctx, name, []string{
		"find", dir, "-mindepth", "1", "-maxdepth", "1", "-type", "d", "-printf", `%T@\t%f\n`,
	})
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("list %s in %s: exit %d: %s", dir, name, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return parseDirListing(res.Stdout), nil
}

// parseDirListing parses "<epoch seconds>\t<name>" lines. Malformed lines are skipped.
func parseDirListing(out string) []DirEntry {
	var entries []DirEntry
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		stamp, dirName, ok := strings.Cut(sc.Text(), "\t")
		if !ok || dirName == "" {
			continue
		}
		secs, err := strconv.ParseFloat(strings.TrimSpace(stamp), 64)
		if err != nil {
			continue
		}
		whole := int64(secs)
		nanos := int64((secs - float64(whole)) * 1e9)
		entries = append(entries, DirEntry{Name: dirName, ModTime: time.Unix(whole, nanos)})
	}
	return entries
}

// ExecInteractive attaches the operator's terminal to argv inside the container
// through the docker CLI. The program exiting is not an error, whatever its
// status, unless docker itself failed to run it (see interactiveExit).
// Interrupts are left to the attached program: detaching never stops the container.
func (m *Manager) ExecInteractive(ctx context.Context, name string, argv []string) error {
	args := append([]string{"exec", "-it", name}, argv...)
	cmd := m.dockerCommand(args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	log.Debug().Str("container", name).Strs("argv", argv).Msg("attaching interactive session")
	return interactiveExit(name, cmd.Run())
}

// interactiveExit maps the result of docker exec. Statuses 125 to 127 come
// from docker (daemon error, program not executable, program not found).
func interactiveExit(name string, err error) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return err
	}
	code := exitErr.ExitCode()
	if code >= 125 && code <= 127 {
		return fmt.Errorf("docker exec in %s failed with status %d: %w", name, code, err)
	}
	log.Debug().Str("container", name).Int("exit", code).Msg("interactive session ended")
	return nil
}

func (m *Manager) dockerCommand(args ...string) *exec.Cmd {
	cmd := exec.Command(m.dockerBin, args...)
	env := os.Environ()
	if os.Getenv("DOCKER_HOST") == "" && m.host != "" {
		env = append(env, "DOCKER_HOST="+m.host)
	}
	cmd.Env = env
	return cmd
}
