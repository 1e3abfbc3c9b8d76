package depth

import (
	"errors"
	"testing"

	"github.com/mohammad-safakhou/skimmer/models"
)

func TestProfileForKnownDepths(t *testing.T) {
	want := map[models.Depth][2]int{
		models.DepthLess:   {3, 5000},
		models.DepthMedium: {6, 10000},
		models.DepthHigh:   {10, 20000},
	}
	seenInstr := map[string]models.Depth{}
	for _, d := range models.Depths {
		p, err := ProfileFor(d)
		if err != nil {
			t.Fatalf("ProfileFor(%s): %v", d, err)
		}
		if p.Breadth != want[d][0] || p.CharLimitPerSource != want[d][1] {
			t.Fatalf("%s: unexpected profile %+v", d, p)
		}
		if p.Instruction == "" {
			t.Fatalf("%s: empty instruction", d)
		}
		if other, dup := seenInstr[p.Instruction]; dup {
			t.Fatalf("%s shares instruction with %s", d, other)
		}
		seenInstr[p.Instruction] = d
	}
}

func TestProfileForIsStable(t *testing.T) {
	a, _ := ProfileFor(models.DepthHigh)
	b, _ := ProfileFor(models.DepthHigh)
	if a != b {
		t.Fatalf("profile changed between calls: %+v vs %+v", a, b)
	}
}

func TestProfileForUnknownDepth(t *testing.T) {
	if _, err := ProfileFor(models.Depth("extreme")); !errors.Is(err, models.ErrInvalidDepth) {
		t.Fatalf("expected ErrInvalidDepth, got %v", err)
	}
}
