package game

import (
	"fmt"
	"math/rand"
	"sort"
)

// pairPlayers assigns each of ceil(P*K/2) prompt slots two distinct players,
// greedily pairing the players with the most remaining need. When P*K is odd
// exactly one player picks up a bonus (K+1th) assignment.
func pairPlayers(playerIDs []string, perPlayer int) [][2]string {
	need := make(map[string]int, len(playerIDs))
	for _, id := range playerIDs {
		need[id] = perPlayer
	}

	slots := (len(playerIDs)*perPlayer + 1) / 2
	pairs := make([][2]string, 0, slots)

	for i := 0; i < slots; i++ {
		order := make([]string, len(playerIDs))
		copy(order, playerIDs)
		// Shuffle first so equal-need ties break randomly under the stable sort.
		rand.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
		sort.SliceStable(order, func(a, b int) bool {
			return need[order[a]] > need[order[b]]
		})

		p1, p2 := order[0], order[1]
		pairs = append(pairs, [2]string{p1, p2})
		need[p1]--
		need[p2]--
	}

	return pairs
}

// dealPrompts builds the round's matchups from generated texts and records the
// assignments on each player.
func dealPrompts(round int, texts []string, players []*Player) []*Prompt {
	ids := make([]string, len(players))
	byID := make(map[string]*Player, len(players))
	for i, p := range players {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	pairs := pairPlayers(ids, PromptsPerPlayer)
	prompts := make([]*Prompt, 0, len(pairs))
	for i, pair := range pairs {
		text := ""
		if i < len(texts) {
			text = texts[i]
		}
		prompt := &Prompt{
			ID:        fmt.Sprintf("r%d_p%d", round, i),
			Text:      text,
			Player1ID: pair[0],
			Player2ID: pair[1],
		}
		prompts = append(prompts, prompt)
		byID[pair[0]].PromptsAssigned = append(byID[pair[0]].PromptsAssigned, prompt.ID)
		byID[pair[1]].PromptsAssigned = append(byID[pair[1]].PromptsAssigned, prompt.ID)
	}
	return prompts
}

// promptsNeeded is the matchup count for a roster of the given size.
func promptsNeeded(playerCount int) int {
	return (playerCount*PromptsPerPlayer + 1) / 2
}
