package engine

import (
	"math"
	"sort"
	"strings"
	"time"

	"streakpeaked-service/internal/domain"
)

type recordInput struct {
	userID       string
	exam         string
	streak       int
	attempted    int
	correct      int
	totalSeconds int
	times        []int
	tally        domain.Tally
	filter       domain.Filter
	now          time.Time
}

// buildScoreRecord is the pure terminal-state transformation. The session
// calls it once per run, at the moment it flips to terminal.
func buildScoreRecord(in recordInput) domain.ScoreRecord {
	rec := domain.ScoreRecord{
		UserID:        in.userID,
		Exam:          in.exam,
		Streak:        in.streak,
		Attempted:     in.attempted,
		Correct:       in.correct,
		TotalSeconds:  in.totalSeconds,
		QuestionTimes: in.times,
		SectionScores: in.tally.Rows(),
		Filter:        in.filter,
		Timestamp:     in.now,
	}
	if in.attempted > 0 {
		rec.Accuracy = math.Round(float64(in.correct)/float64(in.attempted)*1000) / 10
		rec.AvgSeconds = math.Round(float64(in.totalSeconds)/float64(in.attempted)*100) / 100
	}
	return rec
}

// strongSectionThreshold is the correct-answer count at which a section is
// called out as a strength in the feedback text.
const strongSectionThreshold = 10

// Feedback renders the post-run coaching message shown on the summary screen.
func Feedback(rec domain.ScoreRecord) string {
	var base string
	switch {
	case rec.Streak < 10:
		base = "Your streak score is very low, not even crossing 10. Hope you got a reality check. Now buckle up and grind till you make this streak above 20."
	case rec.Streak < 20:
		base = "Your streak score is decent but not crossing 20. Hope you don't want to take things lightly. Check where you went wrong and improve the streak over 30."
	case rec.Streak < 40:
		base = "You are doing well! Keep the game tight, take streak beyond 40 now. Don't be lazy like CAT."
	default:
		base = "You are right there, dark horse! Nail it, then ace it and rock it. Hit consistent 100+ streak now. madMODEon!"
	}

	strong := strongSections(rec.SectionScores)
	if len(strong) == 0 {
		return base
	}
	suffix := " section is your strength."
	if len(strong) > 1 {
		suffix = " sections are your strength."
	}
	return base + "\nYour " + strings.Join(strong, ", ") + suffix +
		" Keep it tight and double drill on other weak sections!"
}

func strongSections(scores map[string]map[string]int) []string {
	var strong []string
	for section, row := range scores {
		total := 0
		for _, n := range row {
			total += n
		}
		if total >= strongSectionThreshold {
			strong = append(strong, section)
		}
	}
	sort.Strings(strong)
	return strong
}
