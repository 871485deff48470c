package video

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/chenBenjamin97/lunge-classifier/pkg/landmarker"
	"github.com/chenBenjamin97/lunge-classifier/pkg/pose"
	"github.com/chenBenjamin97/lunge-classifier/pkg/store"
	"github.com/chenBenjamin97/lunge-classifier/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type fakeDetector struct {
	det   pose.Detection
	err   error
	calls int
}

func (d *fakeDetector) Detect(_ context.Context, _ gocv.Mat) (pose.Detection, error) {
	d.calls++
	return d.det, d.err
}

type fakeDisplay struct {
	shown int
	keyAt int //WaitKey returns Enter on this call number, never if 0
}

func (d *fakeDisplay) Show(gocv.Mat) { d.shown++ }

func (d *fakeDisplay) WaitKey(int) int {
	if d.keyAt != 0 && d.shown == d.keyAt {
		return utils.EnterKey
	}
	return -1
}

func (d *fakeDisplay) Close() error { return nil }

//fakeSource delivers frames 1..frames and then reports a failed read
type fakeSource struct {
	frames int
	reads  int
}

func (s *fakeSource) Frame(dst *gocv.Mat) (uint64, bool, bool) {
	s.reads++
	if s.reads > s.frames {
		return uint64(s.frames), false, true
	}
	blank := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer blank.Close()
	blank.CopyTo(dst)
	return uint64(s.reads), true, true
}

func (s *fakeSource) Close() error { return nil }

func at(origin pose.Landmark, deg, r float64) pose.Landmark {
	rad := deg * math.Pi / 180
	return pose.Landmark{X: origin.X + r*math.Cos(rad), Y: origin.Y + r*math.Sin(rad)}
}

//lungeSet has both knees at 90 degrees and a straight left waist
func lungeSet() pose.LandmarkSet {
	set := make(pose.LandmarkSet, pose.NumBodyParts)
	for _, side := range []struct {
		hip, knee, ankle, shoulder pose.BodyPart
		x, waist                   float64
	}{
		{pose.LeftHip, pose.LeftKnee, pose.LeftAnkle, pose.LeftShoulder, 0.6, 170},
		{pose.RightHip, pose.RightKnee, pose.RightAnkle, pose.RightShoulder, 0.4, 90},
	} {
		set[side.knee] = pose.Landmark{X: side.x, Y: 0.6}
		set[side.hip] = at(set[side.knee], -90, 0.15)
		set[side.ankle] = at(set[side.knee], 0, 0.15)
		set[side.shoulder] = at(set[side.hip], 90+side.waist, 0.2)
	}
	return set
}

func newTestLive(det *fakeDetector) (*Live, *store.MemoryStore) {
	s := store.NewMemoryStore()
	return &Live{
		SessionID:  "test-session",
		Detector:   det,
		Classifier: pose.NewClassifier(pose.Options{}),
		Store:      s,
		Display:    &fakeDisplay{},
	}, s
}

func TestProcessFrameClassifiesFirstPerson(t *testing.T) {
	det := &fakeDetector{det: pose.Detection{PoseLandmarks: []pose.LandmarkSet{lungeSet(), {}}}}
	live, s := newTestLive(det)

	frame := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()

	res, err := live.ProcessFrame(context.Background(), &frame, 7)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, pose.LabelFullLunge, res.Label)

	rec, err := s.Latest(context.Background(), "test-session")
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Frame)
	assert.Equal(t, *res, rec.Result)
}

func TestProcessFrameWithoutPerson(t *testing.T) {
	live, s := newTestLive(&fakeDetector{})

	frame := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()

	res, err := live.ProcessFrame(context.Background(), &frame, 1)
	require.NoError(t, err)
	assert.Nil(t, res)

	_, err = s.Latest(context.Background(), "test-session")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestProcessFrameIncompleteSet(t *testing.T) {
	det := &fakeDetector{det: pose.Detection{PoseLandmarks: []pose.LandmarkSet{lungeSet()[:12]}}}
	live, _ := newTestLive(det)

	frame := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()

	res, err := live.ProcessFrame(context.Background(), &frame, 1)
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestProcessFrameDetectorError(t *testing.T) {
	live, _ := newTestLive(&fakeDetector{err: errors.New("helper gone")})

	frame := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()

	_, err := live.ProcessFrame(context.Background(), &frame, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "helper gone")
}

func TestRunStopsWhenSourceEnds(t *testing.T) {
	det := &fakeDetector{det: pose.Detection{PoseLandmarks: []pose.LandmarkSet{lungeSet()}}}
	live, _ := newTestLive(det)
	display := &fakeDisplay{}
	live.Display = display
	live.Source = &fakeSource{frames: 3}

	require.NoError(t, live.Run(context.Background()))
	assert.Equal(t, 3, display.shown)
	assert.Equal(t, 3, det.calls)
}

func TestRunStopsOnEnter(t *testing.T) {
	det := &fakeDetector{}
	live, _ := newTestLive(det)
	display := &fakeDisplay{keyAt: 2}
	live.Display = display
	live.Source = &fakeSource{frames: 10}

	require.NoError(t, live.Run(context.Background()))
	assert.Equal(t, 2, display.shown)
}

func TestRunStopsOnCancel(t *testing.T) {
	live, _ := newTestLive(&fakeDetector{})
	live.Source = &fakeSource{frames: 10}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, live.Run(ctx))
	assert.Zero(t, live.Display.(*fakeDisplay).shown)
}

func TestRunStopsWhenHelperIsGone(t *testing.T) {
	det := &fakeDetector{err: fmt.Errorf("landmarker: request 4: %w", landmarker.ErrClosed)}
	live, _ := newTestLive(det)
	display := &fakeDisplay{}
	live.Display = display
	live.Source = &fakeSource{frames: 10}

	err := live.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, landmarker.ErrClosed))
	assert.Equal(t, 1, det.calls)
	assert.Zero(t, display.shown)
}

func TestRunKeepsGoingAfterSingleDetectionError(t *testing.T) {
	det := &fakeDetector{err: errors.New("bad frame")}
	live, _ := newTestLive(det)
	display := &fakeDisplay{}
	live.Display = display
	live.Source = &fakeSource{frames: 3}

	require.NoError(t, live.Run(context.Background()))
	assert.Equal(t, 3, det.calls)
	assert.Equal(t, 3, display.shown)
}
