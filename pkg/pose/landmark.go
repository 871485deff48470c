package pose

import (
	"errors"
	"fmt"
	"image"
	"math"
)

//BodyPart is an index into a LandmarkSet, following the 33 point MediaPipe pose model
type BodyPart int

const (
	Nose BodyPart = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex

	//NumBodyParts is the length of a complete landmark set
	NumBodyParts
)

var bodyPartNames = [NumBodyParts]string{
	"NOSE", "LEFT_EYE_INNER", "LEFT_EYE", "LEFT_EYE_OUTER", "RIGHT_EYE_INNER", "RIGHT_EYE", "RIGHT_EYE_OUTER",
	"LEFT_EAR", "RIGHT_EAR", "MOUTH_LEFT", "MOUTH_RIGHT", "LEFT_SHOULDER", "RIGHT_SHOULDER",
	"LEFT_ELBOW", "RIGHT_ELBOW", "LEFT_WRIST", "RIGHT_WRIST", "LEFT_PINKY", "RIGHT_PINKY",
	"LEFT_INDEX", "RIGHT_INDEX", "LEFT_THUMB", "RIGHT_THUMB", "LEFT_HIP", "RIGHT_HIP",
	"LEFT_KNEE", "RIGHT_KNEE", "LEFT_ANKLE", "RIGHT_ANKLE", "LEFT_HEEL", "RIGHT_HEEL",
	"LEFT_FOOT_INDEX", "RIGHT_FOOT_INDEX",
}

func (b BodyPart) String() string {
	if b < 0 || b >= NumBodyParts {
		return fmt.Sprintf("BodyPart(%d)", int(b))
	}
	return bodyPartNames[b]
}

//Connections are the pairs of body parts joined by a bone when drawing a skeleton
var Connections = [][2]BodyPart{
	{Nose, RightEyeInner}, {RightEyeInner, RightEye}, {RightEye, RightEyeOuter}, {RightEyeOuter, RightEar},
	{Nose, LeftEyeInner}, {LeftEyeInner, LeftEye}, {LeftEye, LeftEyeOuter}, {LeftEyeOuter, LeftEar},
	{MouthRight, MouthLeft},
	{RightShoulder, LeftShoulder},
	{RightShoulder, RightElbow}, {RightElbow, RightWrist}, {RightWrist, RightPinky}, {RightWrist, RightIndex}, {RightWrist, RightThumb}, {RightPinky, RightIndex},
	{LeftShoulder, LeftElbow}, {LeftElbow, LeftWrist}, {LeftWrist, LeftPinky}, {LeftWrist, LeftIndex}, {LeftWrist, LeftThumb}, {LeftPinky, LeftIndex},
	{RightShoulder, RightHip}, {LeftShoulder, LeftHip}, {RightHip, LeftHip},
	{RightHip, RightKnee}, {RightKnee, RightAnkle}, {RightAnkle, RightHeel}, {RightHeel, RightFootIndex}, {RightAnkle, RightFootIndex},
	{LeftHip, LeftKnee}, {LeftKnee, LeftAnkle}, {LeftAnkle, LeftHeel}, {LeftHeel, LeftFootIndex}, {LeftAnkle, LeftFootIndex},
}

//Landmark is a keypoint in normalized image coordinates. Z is carried but never used for classification.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

//LandmarkSet holds all landmarks of one detected person, indexed by BodyPart
type LandmarkSet []Landmark

//ErrMissingLandmark is returned when a landmark set does not contain a required body part
var ErrMissingLandmark = errors.New("missing landmark")

//MissingLandmarkError names the body part which was not present
type MissingLandmarkError struct {
	Part BodyPart
	Len  int
}

func (e *MissingLandmarkError) Error() string {
	return fmt.Sprintf("%v: %s (index %d) not in set of %d landmarks", ErrMissingLandmark, e.Part, int(e.Part), e.Len)
}

func (e *MissingLandmarkError) Is(target error) bool {
	return target == ErrMissingLandmark
}

//At returns the landmark of given body part, or a *MissingLandmarkError if the set is too short for it
func (s LandmarkSet) At(part BodyPart) (Landmark, error) {
	if part < 0 || int(part) >= len(s) {
		return Landmark{}, &MissingLandmarkError{Part: part, Len: len(s)}
	}
	return s[part], nil
}

//Detection is what the landmark source returns for one frame: one landmark set per detected person
type Detection struct {
	PoseLandmarks []LandmarkSet `json:"pose_landmarks"`
}

//FirstPerson returns the landmarks of the first detected person. ok is false when nobody was detected.
func (d Detection) FirstPerson() (set LandmarkSet, ok bool) {
	if len(d.PoseLandmarks) == 0 || len(d.PoseLandmarks[0]) == 0 {
		return nil, false
	}
	return d.PoseLandmarks[0], true
}

//Pixel maps the normalized landmark onto an image of given size
func (l Landmark) Pixel(width, height int) image.Point {
	return image.Pt(int(math.Round(l.X*float64(width))), int(math.Round(l.Y*float64(height))))
}
