package progression

// GrowthStage is the visual evolution step of a character's animal.
type GrowthStage string

const (
	StageBaby   GrowthStage = "baby"
	StageYoung  GrowthStage = "young"
	StageAdult  GrowthStage = "adult"
	StageMaster GrowthStage = "master"
)

// AllStages returns the growth stages in evolution order.
func AllStages() []GrowthStage {
	return []GrowthStage{StageBaby, StageYoung, StageAdult, StageMaster}
}

// StageForLevel returns the growth stage reached at level.
func StageForLevel(level int) GrowthStage {
	switch {
	case level < 10:
		return StageBaby
	case level < 20:
		return StageYoung
	case level < 30:
		return StageAdult
	default:
		return StageMaster
	}
}
