package video

import (
	"context"

	"github.com/chenBenjamin97/lunge-classifier/pkg/pose"
	"gocv.io/x/gocv"
)

//FrameSource hands out the newest captured frame
type FrameSource interface {
	//Frame copies the newest frame into dst. ok is false while no frame was read yet, status is false once the last read failed.
	Frame(dst *gocv.Mat) (number uint64, status bool, ok bool)
	Close() error
}

//Detector finds pose landmarks in a frame. It returns an empty Detection when nobody is in the frame.
type Detector interface {
	Detect(ctx context.Context, frame gocv.Mat) (pose.Detection, error)
}

//Display shows annotated frames to the user
type Display interface {
	Show(frame gocv.Mat)
	//WaitKey waits up to delay milliseconds for a key press and returns its code, -1 if none
	WaitKey(delay int) int
	Close() error
}

//capturedFrame is the content of the camera's single frame slot
type capturedFrame struct {
	mat    gocv.Mat
	number uint64
	status bool
	valid  bool
}

func (f capturedFrame) release() {
	if f.valid {
		f.mat.Close()
	}
}
