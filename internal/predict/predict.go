// Package predict implements the parallelogram geometry predictor (spec
// §4.4): given up to three previously reconstructed vertices of the
// active triangle's neighborhood, it predicts the position of the next
// vertex so only the residual need be coded.
//
// Grounded on the teacher's internal/dsp/predict_lossless.go pred12
// (lClampedAddSubtractFull(L, T, TL), i.e. clamped L+T-TL), the same
// "complete the parallelogram" idea used by VP8L's spatial predictor 12.
// Mesh coordinates are unbounded integers rather than 8-bit pixel
// channels, so the clamp is dropped; overflow cannot occur within the
// bit budgets the spec imposes (§4.4).
package predict

// Point is an integer 3-D coordinate.
type Point struct {
	X, Y, Z int32
}

// Add returns the componentwise sum.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns the componentwise difference.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// halfTruncZero divides v by 2, truncating toward zero.
func halfTruncZero(v int32) int32 {
	return v / 2 // Go's integer division already truncates toward zero
}

// Predict computes the parallelogram prediction P for the next vertex
// given up to three reference points. hasA, hasB, hasD indicate which of
// a, b, d are present; the predictor degrades gracefully as fewer
// reference points are available (spec §4.4):
//
//   - none present:       P = (0,0,0)
//   - only a present:     P = a
//   - a, b present:       P = trunc((a+b)/2)
//   - a, b, d present:    P = a + b - d
func Predict(a, b, d Point, hasA, hasB, hasD bool) Point {
	switch {
	case !hasA:
		return Point{}
	case !hasB:
		return a
	case !hasD:
		sum := a.Add(b)
		return Point{halfTruncZero(sum.X), halfTruncZero(sum.Y), halfTruncZero(sum.Z)}
	default:
		return a.Add(b).Sub(d)
	}
}

// Residual returns actual - P, the value fed to the arithmetic coder.
func Residual(actual, p Point) Point {
	return actual.Sub(p)
}

// Reconstruct returns receivedResidual + P, the decoder's inverse of Residual.
func Reconstruct(receivedResidual, p Point) Point {
	return receivedResidual.Add(p)
}
