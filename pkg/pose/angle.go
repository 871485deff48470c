package pose

import "math"

//CalculateAngle returns the angle in degrees at vertex p2, between the rays p2->p1 and p2->p3.
//Only X and Y are used. The result is always in [0, 180] and does not depend on the turning direction.
//When p1 or p3 coincides with p2 the angle is undefined and 0 is returned.
func CalculateAngle(p1, p2, p3 Landmark) float64 {
	if (p1.X == p2.X && p1.Y == p2.Y) || (p3.X == p2.X && p3.Y == p2.Y) {
		return 0
	}

	angle := (math.Atan2(p3.Y-p2.Y, p3.X-p2.X) - math.Atan2(p1.Y-p2.Y, p1.X-p2.X)) * 180 / math.Pi

	if angle < 0 {
		angle += 360
	}

	if angle > 180 {
		angle = 360 - angle
	}

	return angle
}
