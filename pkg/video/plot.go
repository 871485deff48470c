package video

import (
	"image"
	"image/color"

	"github.com/chenBenjamin97/lunge-classifier/pkg/pose"
	"gocv.io/x/gocv"
)

var (
	labelColor    = color.RGBA{0, 255, 0, 0}
	angleColor    = color.RGBA{255, 255, 255, 0}
	boneColor     = color.RGBA{224, 224, 224, 0}
	keypointColor = color.RGBA{0, 138, 255, 0}
)

//labelOrigin is where the label is written, the angle lines follow below it
var labelOrigin = image.Pt(50, 50)

//DrawLandmarks plots the skeleton of every detected person on given frame
func DrawLandmarks(frame *gocv.Mat, det pose.Detection) {
	width, height := frame.Cols(), frame.Rows()

	for _, set := range det.PoseLandmarks {
		for _, bone := range pose.Connections {
			from, errFrom := set.At(bone[0])
			to, errTo := set.At(bone[1])
			if errFrom != nil || errTo != nil { //partial set, skip bones we have no ends for
				continue
			}
			gocv.Line(frame, from.Pixel(width, height), to.Pixel(width, height), boneColor, 2)
		}

		for _, lm := range set {
			gocv.Circle(frame, lm.Pixel(width, height), 3, keypointColor, -1) //thickness -1 == filled circle
		}
	}
}

//Annotate writes the pose label and the four angles in the top left corner of given frame
func Annotate(frame *gocv.Mat, res pose.Result) {
	gocv.PutTextWithParams(frame, res.Label, labelOrigin, gocv.FontHersheySimplex, 1, labelColor, 2, gocv.LineAA, false)

	for i, line := range res.Lines() {
		org := image.Pt(labelOrigin.X, labelOrigin.Y+30+20*i)
		gocv.PutTextWithParams(frame, line, org, gocv.FontHersheySimplex, 0.5, angleColor, 1, gocv.LineAA, false)
	}
}

//windowDisplay shows frames in a HighGUI window
type windowDisplay struct {
	window *gocv.Window
}

func NewWindowDisplay(title string) Display {
	return &windowDisplay{window: gocv.NewWindow(title)}
}

func (d *windowDisplay) Show(frame gocv.Mat) {
	d.window.IMShow(frame)
}

func (d *windowDisplay) WaitKey(delay int) int {
	return d.window.WaitKey(delay)
}

func (d *windowDisplay) Close() error {
	return d.window.Close()
}
