package rowan

import "math"

// multiply returns a * b for column-major 4x4 matrices.
func multiply(a, b *Transform) Transform {
	var out Transform
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[col*4+row] = a[row]*b[col*4] +
				a[4+row]*b[col*4+1] +
				a[8+row]*b[col*4+2] +
				a[12+row]*b[col*4+3]
		}
	}
	return out
}

// computeLocalTransform builds the node's matrix relative to its parent.
//
// Composition order:
//
//	Translate(position + align*parentSize - mountPoint*size + origin*size)
//	  -> Rotate(x, y, z) -> Scale -> Translate(-origin*size)
func computeLocalTransform(n *Node, parentSize Vec3) Transform {
	var offset, pivot Vec3
	for i := 0; i < 3; i++ {
		pivot[i] = n.origin[i] * n.size[i]
		offset[i] = n.position[i] + n.align[i]*parentSize[i] - n.mountPoint[i]*n.size[i] + pivot[i]
	}

	sx, cx := math.Sincos(n.rotation[0])
	sy, cy := math.Sincos(n.rotation[1])
	sz, cz := math.Sincos(n.rotation[2])

	// R = Rx * Ry * Rz, columns below.
	r := [9]float64{
		cy * cz, cx*sz + sx*sy*cz, sx*sz - cx*sy*cz,
		-cy * sz, cx*cz - sx*sy*sz, sx*cz + cx*sy*sz,
		sy, -sx * cy, cx * cy,
	}

	s := n.scale
	var m Transform
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[col*4+row] = r[col*3+row] * s[col]
		}
	}
	m[15] = 1

	// Translation: offset - (R*S) * pivot.
	for row := 0; row < 3; row++ {
		m[12+row] = offset[row] - (m[row]*pivot[0] + m[4+row]*pivot[1] + m[8+row]*pivot[2])
	}
	return m
}

// invertAffine computes the inverse of an affine 4x4 matrix (bottom row
// 0 0 0 1). Returns the identity if the linear part is singular.
func invertAffine(m *Transform) Transform {
	a, b, c := m[0], m[4], m[8]
	d, e, f := m[1], m[5], m[9]
	g, h, i := m[2], m[6], m[10]

	A := e*i - f*h
	B := -(d*i - f*g)
	C := d*h - e*g
	det := a*A + b*B + c*C
	if det > -1e-12 && det < 1e-12 {
		return IdentityTransform
	}
	inv := 1 / det

	// Rows of the inverse 3x3.
	r00, r01, r02 := A*inv, -(b*i-c*h)*inv, (b*f-c*e)*inv
	r10, r11, r12 := B*inv, (a*i-c*g)*inv, -(a*f-c*d)*inv
	r20, r21, r22 := C*inv, -(a*h-b*g)*inv, (a*e-b*d)*inv

	tx, ty, tz := m[12], m[13], m[14]
	return Transform{
		r00, r10, r20, 0,
		r01, r11, r21, 0,
		r02, r12, r22, 0,
		-(r00*tx + r01*ty + r02*tz),
		-(r10*tx + r11*ty + r12*tz),
		-(r20*tx + r21*ty + r22*tz),
		1,
	}
}

// Invert returns the inverse of an affine transform.
func (t Transform) Invert() Transform {
	return invertAffine(&t)
}

// Multiply returns t * o.
func (t Transform) Multiply(o Transform) Transform {
	return multiply(&t, &o)
}

// Apply transforms a point.
func (t Transform) Apply(p Vec3) Vec3 {
	return Vec3{
		t[0]*p[0] + t[4]*p[1] + t[8]*p[2] + t[12],
		t[1]*p[0] + t[5]*p[1] + t[9]*p[2] + t[13],
		t[2]*p[0] + t[6]*p[1] + t[10]*p[2] + t[14],
	}
}

// Translation returns the translation component.
func (t Transform) Translation() Vec3 {
	return Vec3{t[12], t[13], t[14]}
}
