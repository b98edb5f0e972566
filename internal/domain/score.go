package domain

// ScoreEntry is one leaderboard row for a chat.
type ScoreEntry struct {
	UserID int64 `json:"user_id"`
	Points int   `json:"points"`
}

type rank struct {
	Threshold int
	Title     string
}

// Ascending point thresholds mapped to rank titles. The first entry is the
// default for anyone below the second threshold.
var ranks = []rank{
	{0, "Ashigaru 🪶"},
	{10, "Ronin 🥷"},
	{25, "Samurai ⚔️"},
	{50, "Daimyo 🏯"},
	{100, "Shogun 👑"},
	{200, "Legend 🐉"},
}

// RankTitle maps a point total to its rank title.
func RankTitle(points int) string {
	title := ranks[0].Title
	for _, r := range ranks {
		if points >= r.Threshold {
			title = r.Title
		} else {
			break
		}
	}
	return title
}
