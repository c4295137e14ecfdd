package mathutil

import "sort"

// Vec2 is a 2-component vector used for planar projections.
type Vec2 [2]float64

func cross2(o, a, b Vec2) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// ConvexHull2 returns the convex hull of pts in counter-clockwise order
// (monotone chain). Collinear points are dropped. pts is not modified.
func ConvexHull2(pts []Vec2) []Vec2 {
	n := len(pts)
	if n < 3 {
		out := make([]Vec2, n)
		copy(out, pts)
		return out
	}
	p := make([]Vec2, n)
	copy(p, pts)
	sort.Slice(p, func(i, j int) bool {
		if p[i][0] != p[j][0] {
			return p[i][0] < p[j][0]
		}
		return p[i][1] < p[j][1]
	})

	hull := make([]Vec2, 0, 2*n)
	for _, q := range p {
		for len(hull) >= 2 && cross2(hull[len(hull)-2], hull[len(hull)-1], q) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, q)
	}
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		q := p[i]
		for len(hull) >= lower && cross2(hull[len(hull)-2], hull[len(hull)-1], q) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, q)
	}
	return hull[:len(hull)-1]
}

// PolygonArea returns the absolute shoelace area of a closed polygon.
func PolygonArea(poly []Vec2) float64 {
	if len(poly) < 3 {
		return 0
	}
	var a float64
	for i := range poly {
		j := (i + 1) % len(poly)
		a += poly[i][0]*poly[j][1] - poly[j][0]*poly[i][1]
	}
	if a < 0 {
		a = -a
	}
	return a / 2
}

// HullArea2 is the area of the convex hull of pts.
func HullArea2(pts []Vec2) float64 {
	return PolygonArea(ConvexHull2(pts))
}
