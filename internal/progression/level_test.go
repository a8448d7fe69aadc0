package progression

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

func freshCharacter() Character {
	return NewCharacter("c1", 1, "go", "cat", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestExperienceRequiredForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 100},
		{2, 150},
		{3, 225},
		{4, 337},
		{5, 506},
		{10, 3844},
	}

	for _, tt := range tests {
		got, err := ExperienceRequiredForLevel(tt.level)
		if err != nil {
			t.Fatalf("ExperienceRequiredForLevel(%d): %v", tt.level, err)
		}
		if got != tt.want {
			t.Errorf("ExperienceRequiredForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestExperienceRequiredForLevel_Invalid(t *testing.T) {
	for _, level := range []int{0, -1, math.MinInt} {
		if _, err := ExperienceRequiredForLevel(level); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("level %d: err = %v, want ErrInvalidArgument", level, err)
		}
	}
}

func TestExperienceRequiredForLevel_Monotone(t *testing.T) {
	prev := 0
	for level := 1; level <= 200; level++ {
		got, err := ExperienceRequiredForLevel(level)
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if got <= 0 {
			t.Fatalf("level %d: threshold %d is not positive", level, got)
		}
		if got < prev {
			t.Fatalf("level %d: threshold %d below previous %d", level, got, prev)
		}
		prev = got
	}
	if prev != math.MaxInt {
		t.Errorf("level 200 threshold = %d, want saturation at MaxInt", prev)
	}
}

func TestApplyExperience(t *testing.T) {
	tests := []struct {
		name      string
		gained    int
		wantLevel int
		wantExp   int
		wantNext  int
	}{
		{"no gain", 0, 1, 0, 100},
		{"below threshold", 99, 1, 99, 100},
		{"exact threshold", 100, 2, 0, 150},
		{"multi level jump", 250, 3, 0, 225},
		{"multi level with remainder", 255, 3, 5, 225},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyExperience(freshCharacter(), tt.gained)
			if err != nil {
				t.Fatalf("ApplyExperience: %v", err)
			}
			if got.Level != tt.wantLevel || got.Experience != tt.wantExp || got.ExperienceToNextLevel != tt.wantNext {
				t.Errorf("got level=%d exp=%d next=%d, want level=%d exp=%d next=%d",
					got.Level, got.Experience, got.ExperienceToNextLevel,
					tt.wantLevel, tt.wantExp, tt.wantNext)
			}
		})
	}
}

func TestApplyExperience_Negative(t *testing.T) {
	_, err := ApplyExperience(freshCharacter(), -1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestApplyExperience_InvalidCharacter(t *testing.T) {
	c := freshCharacter()
	c.Level = 0
	if _, err := ApplyExperience(c, 10); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("level 0: err = %v, want ErrInvalidArgument", err)
	}

	c = freshCharacter()
	c.Experience = -5
	if _, err := ApplyExperience(c, 10); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative exp: err = %v, want ErrInvalidArgument", err)
	}
}

func TestApplyExperience_DoesNotMutateInput(t *testing.T) {
	c := freshCharacter()
	c.EarnedBadges = []string{"level-10"}
	last := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	c.LastStudyDate = &last

	got, err := ApplyExperience(c, 1000)
	if err != nil {
		t.Fatalf("ApplyExperience: %v", err)
	}
	if c.Level != 1 || c.Experience != 0 {
		t.Errorf("input mutated: level=%d exp=%d", c.Level, c.Experience)
	}

	got.EarnedBadges[0] = "changed"
	if c.EarnedBadges[0] != "level-10" {
		t.Error("result shares EarnedBadges with input")
	}
	*got.LastStudyDate = time.Time{}
	if !c.LastStudyDate.Equal(last) {
		t.Error("result shares LastStudyDate with input")
	}
}

func TestApplyExperience_ZeroGainIsIdentity(t *testing.T) {
	c, err := ApplyExperience(freshCharacter(), 777)
	if err != nil {
		t.Fatalf("ApplyExperience: %v", err)
	}
	again, err := ApplyExperience(c, 0)
	if err != nil {
		t.Fatalf("ApplyExperience(0): %v", err)
	}
	if again.Level != c.Level || again.Experience != c.Experience || again.ExperienceToNextLevel != c.ExperienceToNextLevel {
		t.Errorf("zero gain changed character: %+v -> %+v", c, again)
	}
}

func TestApplyExperience_InvariantHolds(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	c := freshCharacter()
	for i := 0; i < 500; i++ {
		var err error
		c, err = ApplyExperience(c, r.IntN(5000))
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		want, _ := ExperienceRequiredForLevel(c.Level)
		if c.ExperienceToNextLevel != want {
			t.Fatalf("step %d: expToNext=%d, want %d", i, c.ExperienceToNextLevel, want)
		}
		if c.Experience < 0 || c.Experience >= c.ExperienceToNextLevel {
			t.Fatalf("step %d: experience %d out of [0, %d)", i, c.Experience, c.ExperienceToNextLevel)
		}
	}
}

func TestApplyExperience_SplitGainMatchesSingleGain(t *testing.T) {
	whole, _ := ApplyExperience(freshCharacter(), 5000)

	split := freshCharacter()
	for i := 0; i < 50; i++ {
		split, _ = ApplyExperience(split, 100)
	}
	if whole.Level != split.Level || whole.Experience != split.Experience {
		t.Errorf("whole=(%d,%d) split=(%d,%d)", whole.Level, whole.Experience, split.Level, split.Experience)
	}
}

func TestApplyExperience_Saturates(t *testing.T) {
	c := freshCharacter()
	c, err := ApplyExperience(c, math.MaxInt)
	if err != nil {
		t.Fatalf("ApplyExperience: %v", err)
	}
	c, err = ApplyExperience(c, math.MaxInt)
	if err != nil {
		t.Fatalf("second ApplyExperience: %v", err)
	}
	if c.Experience >= c.ExperienceToNextLevel {
		t.Errorf("experience %d >= next %d", c.Experience, c.ExperienceToNextLevel)
	}
}

func TestNormalize_RecomputesThreshold(t *testing.T) {
	c := freshCharacter()
	c.Level = 3
	c.ExperienceToNextLevel = 100 // stale value from storage
	c.Experience = 230

	got, err := c.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.Level != 4 || got.Experience != 5 || got.ExperienceToNextLevel != 337 {
		t.Errorf("got level=%d exp=%d next=%d, want 4/5/337", got.Level, got.Experience, got.ExperienceToNextLevel)
	}
}

func TestStudyExperience(t *testing.T) {
	got, err := StudyExperience(25)
	if err != nil {
		t.Fatalf("StudyExperience: %v", err)
	}
	if got != 250 {
		t.Errorf("StudyExperience(25) = %d, want 250", got)
	}
	if _, err := StudyExperience(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative minutes: err = %v", err)
	}
	if _, err := StudyExperience(math.MaxInt); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("overflowing minutes: err = %v", err)
	}
}

func TestTotalExperience(t *testing.T) {
	tests := []struct {
		level, exp, want int
	}{
		{1, 0, 0},
		{1, 50, 50},
		{2, 0, 100},
		{3, 10, 260},
		{4, 0, 475},
	}
	for _, tt := range tests {
		if got := TotalExperience(tt.level, tt.exp); got != tt.want {
			t.Errorf("TotalExperience(%d, %d) = %d, want %d", tt.level, tt.exp, got, tt.want)
		}
	}
}

func TestLevelForTotalExperience_RoundTrip(t *testing.T) {
	for _, total := range []int{0, 1, 99, 100, 249, 250, 260, 10_000, 1_000_000} {
		level, exp, err := LevelForTotalExperience(total)
		if err != nil {
			t.Fatalf("LevelForTotalExperience(%d): %v", total, err)
		}
		if got := TotalExperience(level, exp); got != total {
			t.Errorf("total %d -> (%d, %d) -> %d", total, level, exp, got)
		}

		applied, _ := ApplyExperience(freshCharacter(), total)
		if applied.Level != level || applied.Experience != exp {
			t.Errorf("total %d: ApplyExperience gives (%d, %d), inverse gives (%d, %d)",
				total, applied.Level, applied.Experience, level, exp)
		}
	}

	if _, _, err := LevelForTotalExperience(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative total: err = %v", err)
	}
}
