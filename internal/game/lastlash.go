package game

// LastLashMode selects how the finale prompt is answered.
type LastLashMode string

const (
	ModeFlashback LastLashMode = "FLASHBACK"
	ModeWordLash  LastLashMode = "WORD_LASH"
	ModeAcroLash  LastLashMode = "ACRO_LASH"
)

// LastLashAnswer is one player's finale entry.
type LastLashAnswer struct {
	PlayerID string
	Answer   string
	Points   int
	Votes    int
	IsWinner bool
	Warning  string // soft validation note, never blocks acceptance
}

// LastLash is the finale block owned by a room.
type LastLash struct {
	Prompt       string
	Mode         LastLashMode
	Letters      []string
	Instructions string
	Answers      []*LastLashAnswer
	Votes        map[string]string // voter player ID -> voted-for player ID
}

func (ll *LastLash) answerOf(playerID string) *LastLashAnswer {
	for _, a := range ll.Answers {
		if a.PlayerID == playerID {
			return a
		}
	}
	return nil
}
