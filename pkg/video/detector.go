package video

import (
	"context"
	"fmt"

	"github.com/chenBenjamin97/lunge-classifier/pkg/pose"
	"gocv.io/x/gocv"
)

//ImageDetector finds pose landmarks in an encoded image. *landmarker.Process implements it.
type ImageDetector interface {
	Detect(ctx context.Context, img []byte) (pose.Detection, error)
}

//EncodingDetector encodes frames as JPEG and hands them to an ImageDetector
type EncodingDetector struct {
	images ImageDetector
}

func NewEncodingDetector(images ImageDetector) *EncodingDetector {
	return &EncodingDetector{images: images}
}

func (d *EncodingDetector) Detect(ctx context.Context, frame gocv.Mat) (pose.Detection, error) {
	if frame.Empty() {
		return pose.Detection{}, nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return pose.Detection{}, fmt.Errorf("EncodingDetector: could not encode frame, got '%w'", err)
	}
	defer buf.Close()

	return d.images.Detect(ctx, buf.GetBytes())
}
