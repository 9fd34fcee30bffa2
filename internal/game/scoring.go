package game

import (
	"sort"
	"strings"
)

// MatchupResult is the scored outcome of one matchup. It depends only on the
// two answers and the two vote counters.
type MatchupResult struct {
	IsJinx        bool
	QuipWit       int // 0, 1 or 2
	Player1Points int
	Player2Points int
}

// ScoreMatchup applies the Jinx and QuipWit rules to a completed matchup.
// Sentinel answers are exempt from both: they cannot Jinx each other, and a
// unanimous vote on one earns no bonus.
func ScoreMatchup(answer1, answer2 string, votes1, votes2 int) MatchupResult {
	a1 := strings.ToLower(strings.TrimSpace(answer1))
	a2 := strings.ToLower(strings.TrimSpace(answer2))

	if a1 == a2 && !isSentinel(a1) {
		return MatchupResult{IsJinx: true}
	}

	res := MatchupResult{
		Player1Points: votes1 * PointsPerVote,
		Player2Points: votes2 * PointsPerVote,
	}

	total := votes1 + votes2
	if total > 0 {
		if votes1 == total && !isSentinel(a1) {
			res.QuipWit = 1
			res.Player1Points += QuipWitBonus
		} else if votes2 == total && !isSentinel(a2) {
			res.QuipWit = 2
			res.Player2Points += QuipWitBonus
		}
	}
	return res
}

func isSentinel(canonical string) bool {
	return canonical == strings.ToLower(NoAnswer) || canonical == strings.ToLower(Skipped)
}

// ScoreLastLash tallies the finale's single-vote plurality. Every author
// earns per-vote points; authors tied at the (non-zero) maximum additionally
// earn the first-place bonus and are flagged winners.
func ScoreLastLash(ll *LastLash) {
	for _, a := range ll.Answers {
		a.Votes = 0
	}
	for _, target := range ll.Votes {
		if a := ll.answerOf(target); a != nil {
			a.Votes++
		}
	}

	maxVotes := 0
	for _, a := range ll.Answers {
		if a.Votes > maxVotes {
			maxVotes = a.Votes
		}
	}

	for _, a := range ll.Answers {
		a.Points = a.Votes * PointsPerVote
		if maxVotes > 0 && a.Votes == maxVotes {
			a.Points += LastLashFirst
			a.IsWinner = true
		}
	}
}

// ScoreEntry is one scoreboard row.
type ScoreEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// scoreboardLocked sorts players by score descending; ties keep join order.
func (r *Room) scoreboardLocked() []ScoreEntry {
	board := make([]ScoreEntry, 0, len(r.Players))
	for _, p := range r.Players {
		board = append(board, ScoreEntry{PlayerID: p.ID, Name: p.Name, Score: r.Scores[p.ID]})
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})
	return board
}

// winnersLocked returns every player holding the maximum score.
func (r *Room) winnersLocked() []ScoreEntry {
	if len(r.Players) == 0 {
		return nil
	}
	maxScore := 0
	for _, p := range r.Players {
		if r.Scores[p.ID] > maxScore {
			maxScore = r.Scores[p.ID]
		}
	}
	winners := make([]ScoreEntry, 0, 1)
	for _, p := range r.Players {
		if r.Scores[p.ID] == maxScore {
			winners = append(winners, ScoreEntry{PlayerID: p.ID, Name: p.Name, Score: maxScore})
		}
	}
	return winners
}
