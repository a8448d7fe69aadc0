package progression

// TrainerRank is the profile-wide title earned from the user's level.
type TrainerRank struct {
	BadgeCount int
	Title      string
	Emoji      string
	Color      string

	// NextLevel is 0 once the final rank is reached.
	NextLevel       int
	LevelsUntilNext int
}

type trainerTier struct {
	min   int
	title string
	emoji string
	color string
}

var trainerTiers = []trainerTier{
	{0, "Novice Trainer", "🌱", "#9CA3AF"},
	{5, "Beginner Trainer", "🥉", "#CD7F32"},
	{10, "Skilled Trainer", "🥈", "#C0C0C0"},
	{20, "Elite Trainer", "🥇", "#FFD700"},
	{35, "Veteran Trainer", "💎", "#E5E4E2"},
	{50, "Ace Trainer", "💚", "#50C878"},
	{60, "Champion", "💎", "#B9F2FF"},
	{85, "Master Trainer", "👑", "#9D4EDD"},
	{100, "Master Trainer", "👑", "#9D4EDD"},
}

// RankForLevel maps a user level onto the eight-step trainer ladder.
func RankForLevel(level int) TrainerRank {
	idx := 0
	for i, t := range trainerTiers {
		if level >= t.min {
			idx = i
		}
	}
	t := trainerTiers[idx]
	r := TrainerRank{
		BadgeCount: idx,
		Title:      t.title,
		Emoji:      t.emoji,
		Color:      t.color,
	}
	if idx+1 < len(trainerTiers) {
		r.NextLevel = trainerTiers[idx+1].min
		r.LevelsUntilNext = r.NextLevel - level
	}
	return r
}
