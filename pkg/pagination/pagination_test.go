package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{50, 50},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tc := range tests {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	p := Normalize(Params{Limit: -1, Offset: -10})
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Fatalf("unexpected normalized params %+v", p)
	}
}
