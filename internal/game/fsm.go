package game

import (
	"context"
	"math/rand"
	"sort"
	"time"
)

// promptFetchTimeout bounds the remote generator; the fallback wrapper fills
// any shortfall so phase entry always proceeds.
const promptFetchTimeout = 6 * time.Second

// callbackFor resolves the expiry action for a state. Natural timer expiry
// and pause/resume both dispatch through this table, so resumption is
// deterministic rather than dependent on captured closures.
func (e *Engine) callbackFor(s State) func(*Room) {
	switch s {
	case StatePrompt:
		return e.answerTimeoutLocked
	case StateVoting:
		return e.votingStepLocked
	case StateScoring:
		return e.advanceRoundLocked
	case StateLastLash:
		return e.lastLashTimeoutLocked
	case StateLastLashVoting:
		return e.finaleStepLocked
	}
	return nil
}

// armCountdownLocked replaces the room's countdown. Ticking countdowns
// broadcast TIMER_UPDATE each second; transition holds are silent.
func (e *Engine) armCountdownLocked(r *Room, d time.Duration, ticks bool) {
	e.stopCountdownLocked(r)
	r.TimerEnd = time.Now().Add(d)

	var onTick func(int)
	if ticks {
		onTick = func(left int) {
			e.emitter.EmitToRoom(r.Code, EvTimerUpdate, map[string]any{"remaining": left})
		}
	}

	var c *countdown
	c = startCountdown(d, onTick, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.timer != c || r.Paused {
			return
		}
		r.timer = nil
		r.TimerEnd = time.Time{}
		if ticks {
			e.emitter.EmitToRoom(r.Code, EvTimerUpdate, map[string]any{"remaining": 0})
		}
		if cb := e.callbackFor(r.State); cb != nil {
			cb(r)
		}
	})
	r.timer = c
}

func (e *Engine) armHoldLocked(r *Room, ms int) {
	e.armCountdownLocked(r, time.Duration(ms)*time.Millisecond, false)
}

func (e *Engine) stopCountdownLocked(r *Room) {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.TimerEnd = time.Time{}
}

// enterPromptLocked deals a fresh round: prompt texts from the source, pairs
// from the pairing pass, then fan-out and the answer timer.
func (e *Engine) enterPromptLocked(r *Room) {
	r.CurrentRound++
	for _, p := range r.Players {
		p.resetRound()
	}

	ctx, cancel := context.WithTimeout(context.Background(), promptFetchTimeout)
	texts, err := e.source.GeneratePrompts(ctx, promptsNeeded(len(r.Players)), r.UsedPromptTexts, r.Theme)
	cancel()
	if err != nil {
		// The fallback source never errors; a bare source might.
		e.log.Error("prompt generation failed", "room", r.Code, "error", err)
	}

	r.Prompts = dealPrompts(r.CurrentRound, texts, r.Players)
	r.State = StatePrompt
	r.CurrentMatchupIndex = 0

	e.log.Info("round started", "room", r.Code, "round", r.CurrentRound, "prompts", len(r.Prompts))
	e.toHostLocked(r, EvPromptPhase, map[string]any{
		"round":       r.CurrentRound,
		"totalRounds": RoundsPerGame,
		"playerCount": len(r.Players),
	})
	for _, p := range r.Players {
		assigned := make([]map[string]any, 0, len(p.PromptsAssigned))
		for _, id := range p.PromptsAssigned {
			if q := r.promptLocked(id); q != nil {
				assigned = append(assigned, map[string]any{"id": q.ID, "text": q.Text})
			}
		}
		e.toPlayerLocked(p, EvReceivePrompts, map[string]any{
			"round":     r.CurrentRound,
			"prompts":   assigned,
			"timeLimit": AnswerTime,
		})
	}
	e.armCountdownLocked(r, time.Duration(AnswerTime)*time.Second, true)
}

func (r *Room) allAnswersInLocked() bool {
	for _, q := range r.Prompts {
		if !q.Answered(1) || !q.Answered(2) {
			return false
		}
	}
	return true
}

// answerTimeoutLocked is the PROMPT expiry: missing sides become sentinels and
// the phase advances. Timer-driven transitions always make forward progress.
func (e *Engine) answerTimeoutLocked(r *Room) {
	for _, q := range r.Prompts {
		if !q.Answered(1) {
			q.Player1Answer = NoAnswer
		}
		if !q.Answered(2) {
			q.Player2Answer = NoAnswer
		}
	}
	e.enterVotingLocked(r)
}

func (e *Engine) enterVotingLocked(r *Room) {
	r.State = StateVoting
	r.CurrentMatchupIndex = 0
	r.matchupOpen = false
	for _, p := range r.Players {
		p.HasVoted = make(map[string]bool)
	}

	e.emitter.EmitToRoom(r.Code, EvVotingPhase, map[string]any{
		"matchupCount": len(r.Prompts),
	})
	// Short grace before the first matchup so clients can settle.
	e.armHoldLocked(r, voteGraceMs)
}

// votingStepLocked is the VOTING dispatch target: close the open matchup, or
// present the next one.
func (e *Engine) votingStepLocked(r *Room) {
	if r.matchupOpen {
		e.closeMatchupLocked(r)
	} else {
		e.presentMatchupLocked(r)
	}
}

func (e *Engine) presentMatchupLocked(r *Room) {
	if r.CurrentMatchupIndex >= len(r.Prompts) {
		e.enterScoringLocked(r)
		return
	}
	q := r.Prompts[r.CurrentMatchupIndex]
	name1, name2 := "", ""
	if p := r.playerLocked(q.Player1ID); p != nil {
		name1 = p.Name
	}
	if p := r.playerLocked(q.Player2ID); p != nil {
		name2 = p.Name
	}

	r.matchupOpen = true
	e.emitter.EmitToRoom(r.Code, EvVoteMatchup, map[string]any{
		"promptId":      q.ID,
		"promptText":    q.Text,
		"answer1":       q.Player1Answer,
		"answer2":       q.Player2Answer,
		"player1Id":     q.Player1ID,
		"player2Id":     q.Player2ID,
		"player1Name":   name1,
		"player2Name":   name2,
		"matchupIndex":  r.CurrentMatchupIndex,
		"totalMatchups": len(r.Prompts),
		"timeLimit":     VoteTime,
	})
	e.armCountdownLocked(r, time.Duration(VoteTime)*time.Second, true)
}

func (e *Engine) closeMatchupLocked(r *Room) {
	r.matchupOpen = false
	q := r.Prompts[r.CurrentMatchupIndex]

	res := ScoreMatchup(q.Player1Answer, q.Player2Answer, q.Player1Votes, q.Player2Votes)
	q.IsJinx = res.IsJinx
	q.QuipWit = res.QuipWit
	r.Scores[q.Player1ID] += res.Player1Points
	r.Scores[q.Player2ID] += res.Player2Points

	name1, name2 := "", ""
	if p := r.playerLocked(q.Player1ID); p != nil {
		name1 = p.Name
	}
	if p := r.playerLocked(q.Player2ID); p != nil {
		name2 = p.Name
	}

	e.emitter.EmitToRoom(r.Code, EvMatchupResult, map[string]any{
		"promptId":   q.ID,
		"promptText": q.Text,
		"isJinx":     q.IsJinx,
		"quipwit":    q.QuipWit,
		"player1": map[string]any{
			"id": q.Player1ID, "name": name1, "answer": q.Player1Answer,
			"votes": q.Player1Votes, "points": res.Player1Points,
		},
		"player2": map[string]any{
			"id": q.Player2ID, "name": name2, "answer": q.Player2Answer,
			"votes": q.Player2Votes, "points": res.Player2Points,
		},
		"scoreboard": r.scoreboardLocked(),
	})

	r.CurrentMatchupIndex++
	e.armHoldLocked(r, matchupResultMs)
}

func (e *Engine) enterScoringLocked(r *Room) {
	r.State = StateScoring
	e.emitter.EmitToRoom(r.Code, EvRoundScores, map[string]any{
		"round":      r.CurrentRound,
		"scoreboard": r.scoreboardLocked(),
	})
	e.armHoldLocked(r, roundScoresMs)
}

func (e *Engine) advanceRoundLocked(r *Room) {
	if r.CurrentRound < RoundsPerGame {
		e.enterPromptLocked(r)
		return
	}
	e.enterLastLashLocked(r)
}

func (e *Engine) enterLastLashLocked(r *Room) {
	ctx, cancel := context.WithTimeout(context.Background(), promptFetchTimeout)
	finale, err := e.source.GenerateLastLash(ctx, r.UsedPromptTexts, r.Theme)
	cancel()
	if err != nil {
		e.log.Error("finale generation failed", "room", r.Code, "error", err)
	}

	r.LastLash = &LastLash{
		Prompt:       finale.Prompt,
		Mode:         LastLashMode(finale.Mode),
		Letters:      finale.Letters,
		Instructions: finale.Instructions,
		Votes:        make(map[string]string),
	}
	r.State = StateLastLash
	r.lastLashPrompted = false

	e.log.Info("finale reached", "room", r.Code, "mode", finale.Mode)
	// The prompt itself is withheld until the host continues past the reveal.
	e.emitter.EmitToRoom(r.Code, EvLastWitReveal, map[string]any{
		"mode": r.LastLash.Mode,
	})
}

func (e *Engine) lastLashTimeoutLocked(r *Room) {
	if !r.lastLashPrompted {
		return
	}
	for _, p := range r.Players {
		if r.LastLash.answerOf(p.ID) == nil {
			r.LastLash.Answers = append(r.LastLash.Answers, &LastLashAnswer{
				PlayerID: p.ID,
				Answer:   NoAnswer,
			})
		}
	}
	e.enterLastLashVotingLocked(r)
}

func (e *Engine) enterLastLashVotingLocked(r *Room) {
	r.State = StateLastLashVoting
	r.finaleVotingOpen = true

	ll := r.LastLash
	rand.Shuffle(len(ll.Answers), func(i, j int) {
		ll.Answers[i], ll.Answers[j] = ll.Answers[j], ll.Answers[i]
	})

	// Player IDs ride along as internal references; clients present the
	// entries anonymously.
	entries := make([]map[string]any, 0, len(ll.Answers))
	for _, a := range ll.Answers {
		entries = append(entries, map[string]any{"playerId": a.PlayerID, "answer": a.Answer})
	}
	e.emitter.EmitToRoom(r.Code, EvLastLashVoting, map[string]any{
		"prompt":    ll.Prompt,
		"mode":      ll.Mode,
		"answers":   entries,
		"timeLimit": LastLashVoteTime,
	})
	e.armCountdownLocked(r, time.Duration(LastLashVoteTime)*time.Second, true)
}

// finaleStepLocked is the LAST_LASH_VOTING dispatch target: score the finale,
// or after the results hold, finish the game.
func (e *Engine) finaleStepLocked(r *Room) {
	if r.finaleVotingOpen {
		e.closeFinaleVotingLocked(r)
	} else {
		e.finishGameLocked(r)
	}
}

func (e *Engine) closeFinaleVotingLocked(r *Room) {
	r.finaleVotingOpen = false
	ll := r.LastLash

	ScoreLastLash(ll)
	for _, a := range ll.Answers {
		r.Scores[a.PlayerID] += a.Points
	}

	results := make([]map[string]any, 0, len(ll.Answers))
	for _, a := range sortedByPoints(ll.Answers) {
		name := ""
		if p := r.playerLocked(a.PlayerID); p != nil {
			name = p.Name
		}
		results = append(results, map[string]any{
			"playerId": a.PlayerID,
			"name":     name,
			"answer":   a.Answer,
			"votes":    a.Votes,
			"points":   a.Points,
			"isWinner": a.IsWinner,
			"warning":  a.Warning,
		})
	}
	e.emitter.EmitToRoom(r.Code, EvLastLashResults, map[string]any{
		"prompt":     ll.Prompt,
		"mode":       ll.Mode,
		"answers":    results,
		"scoreboard": r.scoreboardLocked(),
	})
	e.armHoldLocked(r, lastLashResultsMs)
}

func sortedByPoints(answers []*LastLashAnswer) []*LastLashAnswer {
	out := make([]*LastLashAnswer, len(answers))
	copy(out, answers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out
}

func (e *Engine) finishGameLocked(r *Room) {
	e.stopCountdownLocked(r)
	r.State = StateGameOver

	e.log.Info("game over", "room", r.Code, "winners", len(r.winnersLocked()))
	e.emitter.EmitToRoom(r.Code, EvGameOver, map[string]any{
		"winners":    r.winnersLocked(),
		"scoreboard": r.scoreboardLocked(),
	})
}
