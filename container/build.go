package container

import (
	"archive/tar"
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/pkg/jsonmessage"
	"golang.org/x/term"

	"github.com/everydev1618/claude-sandbox/internal/log"
)

// Dockerfile is the recipe of the sandbox image.
//
//go:embed Dockerfile
var Dockerfile []byte

// BuildOptions configures an image build.
type BuildOptions struct {
	Tag        string
	Dockerfile []byte
	NoCache    bool
	Out        io.Writer
}

// BuildImage builds an image from a single Dockerfile and streams progress to opts.Out.
func (m *Manager) BuildImage(ctx context.Context, opts BuildOptions) error {
	if !m.available {
		return ErrUnavailable
	}
	if len(opts.Dockerfile) == 0 {
		opts.Dockerfile = Dockerfile
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	buildCtx, err := dockerfileContext(opts.Dockerfile)
	if err != nil {
		return err
	}

	resp, err := m.client.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:        []string{opts.Tag},
		Dockerfile:  "Dockerfile",
		NoCache:     opts.NoCache,
		Remove:      true,
		ForceRemove: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build docker image: %w", err)
	}
	defer resp.Body.Close()

	fd, isTerm := outFd(opts.Out)
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, opts.Out, fd, isTerm, nil); err != nil {
		return fmt.Errorf("failed to build docker image: %w", err)
	}
	log.Info().Str("image", opts.Tag).Bool("no_cache", opts.NoCache).Msg("image built")
	return nil
}

// dockerfileContext packs a Dockerfile into a tar build context.
func dockerfileContext(dockerfile []byte) (io.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	hdr := &tar.Header{
		Name:    "Dockerfile",
		Mode:    0o644,
		Size:    int64(len(dockerfile)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, err
	}
	if _, err := tw.Write(dockerfile); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

func outFd(w io.Writer) (uintptr, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return 0, false
	}
	return f.Fd(), term.IsTerminal(int(f.Fd()))
}
