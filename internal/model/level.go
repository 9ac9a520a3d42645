package model

import "fmt"

type Level struct {
	Rank     int
	Name     string
	MinScore int
}

// Levels is ordered by ascending MinScore.
var Levels = []Level{
	{Rank: 1, Name: "Novizio", MinScore: 0},
	{Rank: 2, Name: "Apprendista", MinScore: 100},
	{Rank: 3, Name: "Esperto", MinScore: 500},
	{Rank: 4, Name: "Maestro", MinScore: 1000},
	{Rank: 5, Name: "Gran Maestro", MinScore: 2500},
}

// LevelProgress places a score on the level ladder. Next is nil at the top
// level, where Progress is 1.
type LevelProgress struct {
	Current  Level
	Next     *Level
	Progress float64
}

func LevelForScore(score int) LevelProgress {
	idx := 0
	for i, l := range Levels {
		if score < l.MinScore {
			break
		}
		idx = i
	}

	current := Levels[idx]
	if idx == len(Levels)-1 {
		return LevelProgress{Current: current, Progress: 1}
	}

	next := Levels[idx+1]
	progress := float64(score-current.MinScore) / float64(next.MinScore-current.MinScore)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return LevelProgress{Current: current, Next: &next, Progress: progress}
}

// FormatScore renders scores of 1000 and above in thousands, e.g. "1.5k".
func FormatScore(score int) string {
	if score >= 1000 {
		return fmt.Sprintf("%.1fk", float64(score)/1000)
	}
	return fmt.Sprintf("%d", score)
}
