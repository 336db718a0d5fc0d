package main

import "math"

// CheckSphereCollision checks if two spheres overlap
func CheckSphereCollision(c1 Vector3, r1 float64, c2 Vector3, r2 float64) bool {
	radSum := r1 + r2
	return c2.Sub(c1).LengthSqr() <= radSum*radSum
}

// RayHit describes a ray-sphere intersection
type RayHit struct {
	Hit      bool
	Distance float64 // along the ray from its origin
	Point    Vector3
}

// RaySphereIntersect performs the exact narrow-phase test between a ray and a
// sphere. Returns the nearest intersection at t >= 0; a ray starting inside
// the sphere hits at the exit point.
func RaySphereIntersect(origin, direction Vector3, center Vector3, radius float64) RayHit {
	dir := direction.Normalize()
	oc := origin.Sub(center)

	b := 2 * oc.Dot(dir)
	c := oc.LengthSqr() - radius*radius
	disc := b*b - 4*c

	if disc < 0 {
		return RayHit{}
	}

	sq := math.Sqrt(disc)
	t := (-b - sq) / 2
	if t < 0 {
		t = (-b + sq) / 2
	}
	if t < 0 {
		return RayHit{}
	}

	return RayHit{
		Hit:      true,
		Distance: t,
		Point:    origin.Add(dir.Scale(t)),
	}
}
