package landmarker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/chenBenjamin97/lunge-classifier/pkg/config"
	"github.com/chenBenjamin97/lunge-classifier/pkg/pose"
	"github.com/chenBenjamin97/lunge-classifier/pkg/utils"
	"go.uber.org/zap"
)

//ErrNotStarted is returned by Detect before Start succeeded
var ErrNotStarted = errors.New("landmarker: helper not started")

//Process runs the pose landmarker helper (a python script wrapping the MediaPipe pose landmarker model) as a child process.
//It must be started explicitly before use and is safe for use by one frame loop at a time.
type Process struct {
	cfg config.DetectorConfig

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	client *Client
}

func NewProcess(cfg config.DetectorConfig) *Process {
	return &Process{cfg: cfg}
}

//Args returns the command line the helper is started with
func (p *Process) Args() []string {
	return []string{p.cfg.Command, p.cfg.Script, "--model", p.cfg.ModelPath}
}

//Start launches the helper. The helper lives until Close is called or ctx is cancelled.
func (p *Process) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return nil
	}

	args := p.Args()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("landmarker: could not get helper's standard input, got '%w'", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("landmarker: could not get helper's standard output, got '%w'", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("landmarker: could not start '%s', got '%w'", p.cfg.Script, err)
	}

	utils.Logger.Info("landmarker helper started",
		zap.Strings("args", args), zap.Int("pid", cmd.Process.Pid))

	p.cmd = cmd
	p.stdin = stdin
	p.client = NewClient(stdin, stdout)
	return nil
}

//Detect sends an encoded image to the helper, waiting at most the configured timeout for its answer
func (p *Process) Detect(ctx context.Context, img []byte) (pose.Detection, error) {
	p.mu.Lock()
	client := p.client
	p.mu.Unlock()

	if client == nil {
		return pose.Detection{}, ErrNotStarted
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	return client.Detect(ctx, img)
}

//Close closes the helper's input, which makes it exit, and waits for it
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil {
		return nil
	}

	p.client.Close()
	p.stdin.Close()
	<-p.client.done
	err := p.cmd.Wait()
	p.cmd, p.stdin, p.client = nil, nil, nil

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			utils.Logger.Warn("landmarker helper exited with error", zap.Error(err))
			return nil
		}
		return fmt.Errorf("landmarker: waiting for helper, got '%w'", err)
	}

	return nil
}
