package util

import (
	"math"
	"testing"
)

func TestCopyBytes(t *testing.T) {
	src := []byte("doc")
	c := CopyBytes(src)
	src[0] = 'x'
	if string(c) != "doc" {
		t.Errorf("CopyBytes shares memory with its input: %q", c)
	}
	if c := CopyBytes(nil); c == nil || len(c) != 0 {
		t.Errorf("CopyBytes(nil) = %v, want empty non-nil slice", c)
	}
}

func TestHashString(t *testing.T) {
	if HashString("NEW-NEWY-123", 1) != HashString("NEW-NEWY-123", 1) {
		t.Error("HashString is not deterministic")
	}
	if HashString("NEW-NEWY-123", 1) == HashString("NEW-NEWY-123", 2) {
		t.Error("HashString ignores the seed")
	}
	// FNV-1a of the empty string is the offset basis
	if HashString("", 0) != fnvOffset64 {
		t.Errorf("HashString(\"\", 0) = %d, want %d", HashString("", 0), uint64(fnvOffset64))
	}
}

func TestNodeID(t *testing.T) {
	if NodeID("") != 0 {
		t.Error("NodeID of an empty name must be 0")
	}
	if NodeID("node-1") == NodeID("node-2") {
		t.Error("different nodes share an id")
	}
	if NodeID("node-1") != NodeID("node-1") {
		t.Error("NodeID is not deterministic")
	}
}

func TestDistributionStats(t *testing.T) {
	even := NewDistributionStats([]float64{10, 10, 10, 10})
	if even.DistributionQuality != 1 {
		t.Errorf("even distribution quality = %f, want 1", even.DistributionQuality)
	}

	skewed := NewDistributionStats([]float64{40, 0, 0, 0})
	if skewed.DistributionQuality >= even.DistributionQuality {
		t.Errorf("skewed distribution rated %f, even %f", skewed.DistributionQuality, even.DistributionQuality)
	}
	if skewed.Max != 40 || skewed.Min != 0 || skewed.Mean != 10 {
		t.Errorf("unexpected stats %+v", skewed.Stats)
	}
	if math.Abs(skewed.StdDeviation-math.Sqrt(300)) > 1e-9 {
		t.Errorf("std deviation = %f, want %f", skewed.StdDeviation, math.Sqrt(300))
	}

	if empty := NewDistributionStats(nil); empty.Mean != 0 {
		t.Errorf("empty stats = %+v", empty)
	}
}
