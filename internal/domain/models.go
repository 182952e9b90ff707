package domain

import "time"

// Section identifies an exam section.
type Section string

const (
	SectionGK        Section = "GK"
	SectionMaths     Section = "Maths"
	SectionReasoning Section = "Reasoning"
	SectionEnglish   Section = "English"
)

// Sections lists every known section in display order.
var Sections = []Section{SectionGK, SectionMaths, SectionReasoning, SectionEnglish}

// Level is the difficulty of a question.
type Level string

const (
	LevelEasy   Level = "Easy"
	LevelMedium Level = "Medium"
	LevelHard   Level = "Hard"
)

// Levels lists every difficulty in ascending order.
var Levels = []Level{LevelEasy, LevelMedium, LevelHard}

// FilterAll is the wildcard value for either filter dimension.
const FilterAll = "All"

// Filter selects the active slice of a question bank.
type Filter struct {
	Section    string `json:"section"`
	Difficulty string `json:"difficulty"`
}

// Matches reports whether a question passes the filter.
func (f Filter) Matches(q Question) bool {
	if f.Section != "" && f.Section != FilterAll && Section(f.Section) != q.Section {
		return false
	}
	if f.Difficulty != "" && f.Difficulty != FilterAll && Level(f.Difficulty) != q.Level {
		return false
	}
	return true
}

// Question is an MCQ record from the bank. Answer is a loose encoding:
// literal option text, a letter A-D, or a digit 1-4. The source data is
// inconsistent about which, so resolution is the evaluator's job.
type Question struct {
	ID       string   `json:"id"`
	Section  Section  `json:"section"`
	Level    Level    `json:"level"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
	Image    string   `json:"image,omitempty"` // image questions are skipped at load
}

// CategoryKey addresses one cell of the per-category tally.
type CategoryKey struct {
	Section Section
	Level   Level
}

// Tally counts correct answers per (section, level) cell.
type Tally map[CategoryKey]int

// Rows converts a tally into a JSON-friendly nested map keyed by strings.
func (t Tally) Rows() map[string]map[string]int {
	rows := make(map[string]map[string]int, len(Sections))
	for _, sec := range Sections {
		row := make(map[string]int, len(Levels))
		for _, lvl := range Levels {
			row[string(lvl)] = t[CategoryKey{Section: sec, Level: lvl}]
		}
		rows[string(sec)] = row
	}
	return rows
}

// ScoreRecord is the final snapshot of a terminal session, handed to the
// score sink exactly once per run.
type ScoreRecord struct {
	UserID        string                    `json:"userId"`
	Exam          string                    `json:"exam"`
	Streak        int                       `json:"streakScore"`
	Attempted     int                       `json:"questionsAttempted"`
	Correct       int                       `json:"correctAnswers"`
	Accuracy      float64                   `json:"accuracy"`
	TotalSeconds  int                       `json:"totalTime"`
	AvgSeconds    float64                   `json:"averageTimePerQuestion"`
	QuestionTimes []int                     `json:"questionTimes"`
	SectionScores map[string]map[string]int `json:"sectionScores"`
	Filter        Filter                    `json:"filter"`
	Timestamp     time.Time                 `json:"timestamp"`
}

// ChatMessage is one live-chat entry.
type ChatMessage struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	UserID    string    `json:"uid"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	ReplyTo   string    `json:"replyTo,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Match pairs two queued players for a timed compete mode.
type Match struct {
	ID        string    `json:"matchId"`
	Players   [2]string `json:"players"`
	Mode      string    `json:"mode"` // e.g. "compete-60", "compete-120"
	StartedAt time.Time `json:"startedAt"`
	Status    string    `json:"status"`
}
