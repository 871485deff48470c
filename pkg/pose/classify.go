package pose

import "fmt"

//Pose labels
const (
	LabelUnknown       = "Unknown Pose"
	LabelFullLunge     = "Full Lunge"
	LabelHalfLungeLeft = "Half Lunge (L)"
	//LabelHalfLungeRight is given when the right knee is bent and the left one is close to straight
	LabelHalfLungeRight = "Half Lunge (R)"
)

//Result is the classification of a single frame. Angles are in degrees.
type Result struct {
	Label           string  `json:"label"`
	LeftKneeAngle   float64 `json:"left_knee_angle"`
	RightKneeAngle  float64 `json:"right_knee_angle"`
	LeftWaistAngle  float64 `json:"left_waist_angle"`
	RightWaistAngle float64 `json:"right_waist_angle"`
}

//Options tune the Classifier
type Options struct {
	//CorrectedRightBound makes the "Half Lunge (L)" rule bound the right knee angle below 180.
	//When false the rule compares the left knee angle against 180 a second time instead.
	CorrectedRightBound bool
}

//Classifier labels a landmark set using fixed joint angle thresholds. It holds no state between calls.
type Classifier struct {
	opts Options
}

func NewClassifier(opts Options) *Classifier {
	return &Classifier{opts: opts}
}

var defaultClassifier = NewClassifier(Options{})

//Classify labels given landmark set with the default classifier
func Classify(set LandmarkSet) (Result, error) {
	return defaultClassifier.Classify(set)
}

type joint struct {
	a, vertex, b BodyPart
}

var (
	leftKnee   = joint{LeftHip, LeftKnee, LeftAnkle}
	rightKnee  = joint{RightHip, RightKnee, RightAnkle}
	leftWaist  = joint{LeftShoulder, LeftHip, LeftKnee}
	rightWaist = joint{RightShoulder, RightHip, RightKnee}
)

func (j joint) angle(set LandmarkSet) (float64, error) {
	a, err := set.At(j.a)
	if err != nil {
		return 0, err
	}
	v, err := set.At(j.vertex)
	if err != nil {
		return 0, err
	}
	b, err := set.At(j.b)
	if err != nil {
		return 0, err
	}
	return CalculateAngle(a, v, b), nil
}

//Classify computes the knee and waist angles of given landmark set and derives a label from them.
//It fails with ErrMissingLandmark if any hip, knee, ankle or shoulder is absent.
func (c *Classifier) Classify(set LandmarkSet) (Result, error) {
	var res Result
	var err error

	if res.LeftKneeAngle, err = leftKnee.angle(set); err != nil {
		return Result{}, fmt.Errorf("Classify: left knee: %w", err)
	}
	if res.RightKneeAngle, err = rightKnee.angle(set); err != nil {
		return Result{}, fmt.Errorf("Classify: right knee: %w", err)
	}
	if res.LeftWaistAngle, err = leftWaist.angle(set); err != nil {
		return Result{}, fmt.Errorf("Classify: left waist: %w", err)
	}
	if res.RightWaistAngle, err = rightWaist.angle(set); err != nil {
		return Result{}, fmt.Errorf("Classify: right waist: %w", err)
	}

	res.Label = c.label(res.LeftKneeAngle, res.RightKneeAngle, res.LeftWaistAngle, res.RightWaistAngle)
	return res, nil
}

//label applies the threshold rules in order. The last rule is checked on its own and may override the others.
func (c *Classifier) label(leftKneeAngle, rightKneeAngle, leftWaistAngle, rightWaistAngle float64) string {
	label := LabelUnknown

	if (leftKneeAngle > 75 && leftKneeAngle < 115) && (rightKneeAngle > 75 && rightKneeAngle < 115) {
		//both knees bent: a squat or bending down unless one side of the waist is straight
		if (leftWaistAngle > 160 && leftWaistAngle < 180) || (rightWaistAngle > 160 && rightWaistAngle < 180) {
			label = LabelFullLunge
		} else {
			label = LabelUnknown
		}
	} else if (leftKneeAngle > 120 && leftKneeAngle < 180) && (rightKneeAngle >= 115 && rightKneeAngle < 145) {
		label = LabelHalfLungeRight
	}

	upper := leftKneeAngle
	if c.opts.CorrectedRightBound {
		upper = rightKneeAngle
	}
	if (leftKneeAngle >= 115 && leftKneeAngle < 145) && (rightKneeAngle > 120 && upper < 180) {
		label = LabelHalfLungeLeft
	}

	return label
}

//Lines returns the angle readings as they are written under the label on the preview
func (r Result) Lines() []string {
	return []string{
		fmt.Sprintf("Left Knee Angle: %.2f", r.LeftKneeAngle),
		fmt.Sprintf("Right Knee Angle: %.2f", r.RightKneeAngle),
		fmt.Sprintf("Left Waist Angle: %.2f", r.LeftWaistAngle),
		fmt.Sprintf("Right Waist Angle: %.2f", r.RightWaistAngle),
	}
}
