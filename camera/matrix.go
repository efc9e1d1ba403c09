// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package camera

import "golang.org/x/image/math/f32"

// Matrices are row-major: m[4*r+c] is row r, column c. Points are column
// vectors, so Mul(a, b) applies b first.

// identity returns the 4x4 identity matrix.
func identity() f32.Mat4 {
	return f32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// translation returns a matrix translating by (x, y).
func translation(x, y float32) f32.Mat4 {
	return f32.Mat4{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// scaling returns a matrix scaling x and y by s.
func scaling(s float32) f32.Mat4 {
	return f32.Mat4{
		s, 0, 0, 0,
		0, s, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// ortho returns an orthographic projection with near=-1 and far=1.
func ortho(left, right, bottom, top float32) f32.Mat4 {
	const near, far = -1, 1
	return f32.Mat4{
		2 / (right - left), 0, 0, -(right + left) / (right - left),
		0, 2 / (top - bottom), 0, -(top + bottom) / (top - bottom),
		0, 0, -2 / (far - near), -(far + near) / (far - near),
		0, 0, 0, 1,
	}
}

// Mul returns a*b.
func Mul(a, b f32.Mat4) f32.Mat4 {
	var m f32.Mat4
	for r := range 4 {
		for c := range 4 {
			var s float32
			for k := range 4 {
				s += a[4*r+k] * b[4*k+c]
			}
			m[4*r+c] = s
		}
	}
	return m
}

// Transform applies m to the point (x, y, 0, 1) and returns the resulting
// x and y after the perspective divide.
func Transform(m f32.Mat4, x, y float32) (float32, float32) {
	tx := m[0]*x + m[1]*y + m[3]
	ty := m[4]*x + m[5]*y + m[7]
	tw := m[12]*x + m[13]*y + m[15]
	if tw != 0 && tw != 1 {
		tx /= tw
		ty /= tw
	}
	return tx, ty
}

// Invert returns the inverse of m. ok is false when m is singular, in which
// case the identity is returned.
func Invert(m f32.Mat4) (inv f32.Mat4, ok bool) {
	// Cofactor expansion over 2x2 sub-determinants.
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return identity(), false
	}
	d := 1 / det

	inv[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * d
	inv[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * d
	inv[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * d
	inv[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * d

	inv[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * d
	inv[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * d
	inv[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * d
	inv[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * d

	inv[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * d
	inv[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * d
	inv[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * d
	inv[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * d

	inv[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * d
	inv[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * d
	inv[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * d
	inv[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * d
	return inv, true
}
