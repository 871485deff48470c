package video

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chenBenjamin97/lunge-classifier/pkg/landmarker"
	"github.com/chenBenjamin97/lunge-classifier/pkg/pose"
	"github.com/chenBenjamin97/lunge-classifier/pkg/store"
	"github.com/chenBenjamin97/lunge-classifier/pkg/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

//Live runs the capture -> detect -> classify -> display loop of one session
type Live struct {
	SessionID  string
	Source     FrameSource
	Detector   Detector
	Classifier *pose.Classifier
	Store      store.ResultStore
	Display    Display

	//RecordPath, when set, receives the annotated frames as an XVID video
	RecordPath   string
	PollInterval time.Duration

	recorder *gocv.VideoWriter
}

//ProcessFrame detects the pose in frame, draws the skeleton and, if somebody was found, classifies the first person,
//annotates the frame and publishes the result. It returns nil when nobody could be classified, the frame is then left as is.
func (l *Live) ProcessFrame(ctx context.Context, frame *gocv.Mat, number uint64) (*pose.Result, error) {
	det, err := l.Detector.Detect(ctx, *frame)
	if err != nil {
		return nil, fmt.Errorf("ProcessFrame: detection failed on frame %d, got '%w'", number, err)
	}

	DrawLandmarks(frame, det)

	set, ok := det.FirstPerson()
	if !ok {
		return nil, nil
	}

	res, err := l.Classifier.Classify(set)
	if err != nil {
		if errors.Is(err, pose.ErrMissingLandmark) { //incomplete landmark set, pass the frame through
			utils.Logger.Warn("skipping classification", zap.Uint64("frame", number), zap.Error(err))
			return nil, nil
		}
		return nil, err
	}

	Annotate(frame, res)

	if l.Store != nil {
		rec := store.Record{SessionID: l.SessionID, Frame: int(number), CapturedAt: time.Now(), Result: res}
		if err := l.Store.SetLatest(ctx, rec); err != nil {
			utils.Logger.Warn("could not publish classification", zap.Uint64("frame", number), zap.Error(err))
		}
	}

	return &res, nil
}

//Run loops until ctx is done, Enter is pressed in the preview window or the source stops delivering frames.
//It returns an error only when the landmarker helper went away, every later frame would fail the same way.
func (l *Live) Run(ctx context.Context) error {
	interval := l.PollInterval
	if interval <= 0 {
		interval = utils.DefaultPollInterval
	}
	waitMs := int(interval / time.Millisecond)
	if waitMs < 1 {
		waitMs = 1
	}

	frame := gocv.NewMat()
	defer frame.Close()
	defer l.closeRecorder()

	utils.Logger.Info("live session started", zap.String("session", l.SessionID))

	var processed int
	for ctx.Err() == nil {
		number, status, ok := l.Source.Frame(&frame)
		if !ok { //nothing captured yet
			time.Sleep(interval)
			continue
		}

		if !status {
			utils.Logger.Info("capture source stopped delivering frames", zap.Uint64("last_frame", number))
			break
		}

		if _, err := l.ProcessFrame(ctx, &frame, number); err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, landmarker.ErrClosed) {
				utils.Logger.Error("landmarker helper is gone, stopping", zap.Uint64("frame", number), zap.Error(err))
				return fmt.Errorf("Run: session %s: %w", l.SessionID, err)
			}
			utils.Logger.Error("frame not classified", zap.Uint64("frame", number), zap.Error(err))
		}
		processed++

		if err := l.record(frame); err != nil {
			utils.Logger.Error("could not record frame", zap.String("path", l.RecordPath), zap.Error(err))
			l.RecordPath = ""
		}

		l.Display.Show(frame)
		if l.Display.WaitKey(waitMs) == utils.EnterKey {
			utils.Logger.Info("enter pressed, stopping")
			break
		}
	}

	utils.Logger.Info("live session ended", zap.String("session", l.SessionID), zap.Int("processed_frames", processed))
	return nil
}

//record appends frame to the recording, opening it on the first frame
func (l *Live) record(frame gocv.Mat) error {
	if l.RecordPath == "" {
		return nil
	}

	if l.recorder == nil {
		fps := float64(time.Second) / float64(l.PollInterval)
		if l.PollInterval <= 0 {
			fps = utils.DefaultFPS
		}

		writer, err := gocv.VideoWriterFile(l.RecordPath, "XVID", fps, frame.Cols(), frame.Rows(), true)
		if err != nil {
			return err
		}
		l.recorder = writer
	}

	return l.recorder.Write(frame)
}

func (l *Live) closeRecorder() {
	if l.recorder != nil {
		l.recorder.Close()
		l.recorder = nil
	}
}
