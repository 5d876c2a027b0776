package quant

import "testing"

func TestStepRoundTrip(t *testing.T) {
	for _, v := range []float64{1.0, 0.5, 0.25, 2.0, 3.0, 0.001, 123.456} {
		s := NewStep(v)
		if !s.Valid() {
			t.Fatalf("NewStep(%v) produced invalid coef %d", v, s.Coef)
		}
		got := s.Value()
		if diff := got - v; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("Step(%v).Value() = %v, want ~%v", v, got, v)
		}
	}
}

func TestQuantizeUnitStep(t *testing.T) {
	step := NewStep(1.0)
	cases := []struct {
		in   float64
		want int32
	}{
		{0, 0},
		{1, 1},
		{-1, -1},
		{0.4, 0},
		{0.6, 1},
		{-0.6, -1},
	}
	for _, c := range cases {
		got, err := Quantize(c.in, step, 8)
		if err != nil {
			t.Fatalf("Quantize(%v): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Quantize(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestQuantizeOverflow(t *testing.T) {
	step := NewStep(1.0)
	if _, err := Quantize(1000, step, 8); err != ErrOverflow {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestDequantizeUnitStepSkipsMultiply(t *testing.T) {
	step := NewStep(1.0)
	if got := Dequantize(42, step); got != 42 {
		t.Fatalf("Dequantize with unit step = %v, want 42", got)
	}
}

func TestQuantizeDequantizeRoundTrip(t *testing.T) {
	step := NewStep(0.5)
	q, err := Quantize(10.2, step, 12)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	got := Dequantize(q, step)
	want := 10.0 // round(10.2/0.5)*0.5 = round(20.4)*0.5 = 20*0.5
	if got != want {
		t.Fatalf("Dequantize(Quantize(10.2)) = %v, want %v", got, want)
	}
}
