package domain

import "testing"

func TestRankTitle(t *testing.T) {
	cases := []struct {
		points int
		want   string
	}{
		{0, "Ashigaru 🪶"},
		{9, "Ashigaru 🪶"},
		{10, "Ronin 🥷"},
		{24, "Ronin 🥷"},
		{25, "Samurai ⚔️"},
		{50, "Daimyo 🏯"},
		{100, "Shogun 👑"},
		{199, "Shogun 👑"},
		{200, "Legend 🐉"},
		{5000, "Legend 🐉"},
	}

	for _, tc := range cases {
		if got := RankTitle(tc.points); got != tc.want {
			t.Errorf("RankTitle(%d) = %q; want %q", tc.points, got, tc.want)
		}
	}
}
