package predict

import "testing"

func TestPredictAllAbsent(t *testing.T) {
	p := Predict(Point{}, Point{}, Point{}, false, false, false)
	if p != (Point{}) {
		t.Fatalf("got %v, want zero point", p)
	}
}

func TestPredictOnlyA(t *testing.T) {
	a := Point{3, -5, 7}
	p := Predict(a, Point{}, Point{}, true, false, false)
	if p != a {
		t.Fatalf("got %v, want %v", p, a)
	}
}

func TestPredictAAndBTruncatesTowardZero(t *testing.T) {
	a := Point{1, -1, 3}
	b := Point{2, -2, 4}
	p := Predict(a, b, Point{}, true, true, false)
	want := Point{1, -1, 3} // (3/2, -3/2, 7/2) truncated = (1, -1, 3)
	if p != want {
		t.Fatalf("got %v, want %v", p, want)
	}
}

func TestPredictAllPresent(t *testing.T) {
	a := Point{5, 0, 1}
	b := Point{2, 3, -1}
	d := Point{1, 1, 1}
	p := Predict(a, b, d, true, true, true)
	want := Point{6, 2, -1} // a+b-d
	if p != want {
		t.Fatalf("got %v, want %v", p, want)
	}
}

func TestResidualReconstructRoundTrip(t *testing.T) {
	actual := Point{10, -20, 30}
	p := Point{4, -3, 2}
	e := Residual(actual, p)
	got := Reconstruct(e, p)
	if got != actual {
		t.Fatalf("round trip = %v, want %v", got, actual)
	}
}
