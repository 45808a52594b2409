package utils

import "testing"

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{150.00, 15000},
		{150.5, 15050},
		{99.999, 10000},
		{0.005, 1},
		{0.01, 1},
		{0, 0},
		{1234.56, 123456},
	}

	for _, tc := range cases {
		if got := ToMinorUnits(tc.amount); got != tc.want {
			t.Errorf("ToMinorUnits(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}
