package safemath

import (
	"math"
	"testing"
)

func TestAdd64(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want uint64
		ok   bool
	}{
		{"zero plus zero", 0, 0, 0, true},
		{"small values", 1, 2, 3, true},
		{"at ceiling", math.MaxUint64 - 1, 1, math.MaxUint64, true},
		{"past ceiling", math.MaxUint64, 1, 0, false},
		{"max plus max", math.MaxUint64, math.MaxUint64, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Add64(tt.a, tt.b)
			if ok != tt.ok {
				t.Fatalf("Add64(%d, %d) ok = %v, want %v", tt.a, tt.b, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("Add64(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
