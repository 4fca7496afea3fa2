package terrain

import (
	"github.com/Faultbox/terramesh/pkg/heightmap"
	"github.com/Faultbox/terramesh/pkg/math"
)

// normalAngleScale maps half a height difference to a rotation in radians.
const normalAngleScale = 45

// Normal estimates the lighting normal at (x, y).
//
// The central differences along x and y become small rotations about the X
// and Y axes, which are applied to the up vector. The result is close to unit
// length but is not renormalized.
func Normal(hm *heightmap.HeightMap, x, y int) [3]float32 {
	last := hm.Size() - 1
	center := hm.Sample(x, y)

	var left, right, top, bottom float32
	if x > 0 {
		left = center - hm.Sample(x-1, y)
	}
	if x < last {
		right = center - hm.Sample(x+1, y)
	}
	if y > 0 {
		top = center - hm.Sample(x, y-1)
	}
	if y < last {
		bottom = center - hm.Sample(x, y+1)
	}

	return normalFromDeltas(left, right, top, bottom)
}

func normalFromDeltas(left, right, top, bottom float32) [3]float32 {
	if left == 0 && right == 0 && top == 0 && bottom == 0 {
		return math.Up.Array()
	}

	xAngle := (left - right) / 2 * normalAngleScale
	yAngle := (top - bottom) / 2 * normalAngleScale
	return rotatedUp(xAngle, yAngle)
}

// rotatedUp rotates the up vector about X by xAngle, then about Y by yAngle.
func rotatedUp(xAngle, yAngle float32) [3]float32 {
	rotation := math.QuatRotationY(yAngle).Mul(math.QuatRotationX(xAngle))
	return rotation.Rotate(math.Up).Array()
}
