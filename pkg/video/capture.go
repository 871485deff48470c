package video

import (
	"fmt"
	"sync"
	"time"

	"github.com/chenBenjamin97/lunge-classifier/pkg/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

//Camera reads frames from a capture device (or a video file / stream) on its own goroutine.
//Every read overwrites the single frame slot; readers always get the newest frame, so frames can be skipped or seen twice.
type Camera struct {
	capture  *gocv.VideoCapture
	interval time.Duration
	slot     utils.Latest[capturedFrame]

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

//OpenCamera opens given source ("0" for the default webcam, a file path or a stream URL) and starts polling it every interval
func OpenCamera(source string, bufferSize int, interval time.Duration) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(utils.ParseSource(source))
	if err != nil {
		return nil, fmt.Errorf("OpenCamera: could not open '%s', got '%w'", source, err)
	}

	if bufferSize > 0 {
		capture.Set(gocv.VideoCaptureBufferSize, float64(bufferSize))
	}

	if interval <= 0 {
		interval = utils.DefaultPollInterval
	}

	c := &Camera{
		capture:  capture,
		interval: interval,
		stop:     make(chan struct{}),
	}

	c.wg.Add(1)
	go c.update()

	utils.Logger.Info("camera opened", zap.String("source", source), zap.Duration("poll_interval", interval))
	return c, nil
}

//update is the capture goroutine. It keeps reading after a failed read, the reader decides what to do with the status.
func (c *Camera) update() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	var number uint64
	for {
		if c.capture.IsOpened() {
			mat := gocv.NewMat()
			status := c.capture.Read(&mat)
			if status {
				number++
			}

			old := c.slot.Swap(capturedFrame{mat: mat, number: number, status: status, valid: true})
			old.release()
		}

		select {
		case <-c.stop:
			return
		case <-ticker.C:
		}
	}
}

func (c *Camera) Frame(dst *gocv.Mat) (number uint64, status bool, ok bool) {
	c.slot.Do(func(f capturedFrame, version uint64) {
		if version == 0 {
			return
		}
		ok = true
		number, status = f.number, f.status
		if status && f.valid && !f.mat.Empty() {
			f.mat.CopyTo(dst)
		}
	})
	return number, status, ok
}

//Close stops the capture goroutine and releases the device
func (c *Camera) Close() error {
	var err error
	c.once.Do(func() {
		close(c.stop)
		c.wg.Wait()

		last := c.slot.Swap(capturedFrame{})
		last.release()

		err = c.capture.Close()
	})
	return err
}
