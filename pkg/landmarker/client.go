package landmarker

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/chenBenjamin97/lunge-classifier/pkg/pose"
	"github.com/chenBenjamin97/lunge-classifier/pkg/utils"
	"go.uber.org/zap"
)

//ErrClosed is returned by Detect after the helper's output ended
var ErrClosed = errors.New("landmarker: helper output closed")

//maxResponseSize bounds a single response line. 33 landmarks for a handful of persons fit easily.
const maxResponseSize = 1 << 20

//response is one line written by the helper for each request line
type response struct {
	ID            uint64             `json:"id"`
	PoseLandmarks []pose.LandmarkSet `json:"pose_landmarks"`
	Error         string             `json:"error,omitempty"`
}

//Client talks the line protocol of the landmarker helper:
//each request is "<id> <base64 encoded image>\n", each response is a JSON object on a single line carrying the same id.
//Responses for requests that already timed out are dropped.
type Client struct {
	mu     sync.Mutex
	w      io.Writer
	nextID uint64

	responses chan response
	done      chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
	readErr   error
}

//NewClient starts reading responses from r. Requests are written to w.
func NewClient(w io.Writer, r io.Reader) *Client {
	c := &Client{
		w:         w,
		responses: make(chan response, 1),
		done:      make(chan struct{}),
		stop:      make(chan struct{}),
	}
	go c.readLoop(r)
	return c
}

func (c *Client) readLoop(r io.Reader) {
	defer close(c.done)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxResponseSize)

	for scanner.Scan() {
		var resp response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			//the helper may print log lines of its own, skip them
			utils.Logger.Debug("landmarker: skipping non JSON line", zap.String("line", scanner.Text()))
			continue
		}
		select {
		case c.responses <- resp:
		case <-c.stop:
			return
		}
	}

	c.readErr = scanner.Err()
}

//Detect sends an encoded image (JPEG or PNG) to the helper and waits for its landmarks
func (c *Client) Detect(ctx context.Context, img []byte) (pose.Detection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return pose.Detection{}, c.closedErr()
	default:
	}

	c.nextID++
	id := c.nextID

	line := make([]byte, 0, base64.StdEncoding.EncodedLen(len(img))+24)
	line = strconv.AppendUint(line, id, 10)
	line = append(line, ' ')
	line = base64.StdEncoding.AppendEncode(line, img)
	line = append(line, '\n')

	if _, err := c.w.Write(line); err != nil {
		return pose.Detection{}, fmt.Errorf("landmarker: could not write request %d, got '%w'", id, err)
	}

	for {
		select {
		case resp := <-c.responses:
			if resp.ID != id {
				utils.Logger.Debug("landmarker: dropping stale response", zap.Uint64("id", resp.ID), zap.Uint64("want", id))
				continue
			}
			if resp.Error != "" {
				return pose.Detection{}, fmt.Errorf("landmarker: request %d failed: %s", id, resp.Error)
			}
			return pose.Detection{PoseLandmarks: resp.PoseLandmarks}, nil
		case <-c.done:
			return pose.Detection{}, c.closedErr()
		case <-ctx.Done():
			return pose.Detection{}, fmt.Errorf("landmarker: request %d: %w", id, ctx.Err())
		}
	}
}

func (c *Client) closedErr() error {
	if c.readErr != nil {
		return fmt.Errorf("%w: %v", ErrClosed, c.readErr)
	}
	return ErrClosed
}

//Close stops reading responses. It does not close the underlying reader or writer.
func (c *Client) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}
