package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestParseIntArg(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"", 5, 5},
		{"  ", 5, 5},
		{"3", 5, 3},
		{" 12 ", 0, 12},
		{"abc", 7, 7},
		{"-4", 0, -4},
	}
	for _, c := range cases {
		if got := parseIntArg(c.in, c.def); got != c.want {
			t.Errorf("parseIntArg(%q, %d) = %d, want %d", c.in, c.def, got, c.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user *tgbotapi.User
		want string
	}{
		{"nil", nil, "someone"},
		{"first only", &tgbotapi.User{FirstName: "Aiko"}, "Aiko"},
		{"first and last", &tgbotapi.User{FirstName: "Aiko", LastName: "Tanaka"}, "Aiko Tanaka"},
		{"username fallback", &tgbotapi.User{UserName: "aiko_t"}, "aiko_t"},
		{"id fallback", &tgbotapi.User{ID: 42}, "user 42"},
	}
	for _, c := range cases {
		if got := displayName(c.user); got != c.want {
			t.Errorf("%s: displayName = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestStripMovePrefix(t *testing.T) {
	cases := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"move strike", "strike", true},
		{"Move Guard", "guard", true},
		{"  move feint  ", "feint", true},
		{"!move strike", "strike", true},
		{"/duelmove guard", "guard", true},
		{"duelmove feint", "feint", true},
		{"strike", "", false},
		{"movestrike", "", false},
		{"hello there", "", false},
	}
	for _, c := range cases {
		got, ok := stripMovePrefix(c.in)
		if got != c.want || ok != c.wantOK {
			t.Errorf("stripMovePrefix(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.wantOK)
		}
	}
}

func TestOpponentFromReply(t *testing.T) {
	from := &tgbotapi.User{ID: 7, FirstName: "Kenji"}
	msg := &tgbotapi.Message{
		ReplyToMessage: &tgbotapi.Message{From: from},
	}

	got, ok := opponentFromMessage(msg)
	if !ok || got.ID != 7 {
		t.Fatalf("opponentFromMessage = (%v, %v), want reply author", got, ok)
	}
}

func TestOpponentFromTextMention(t *testing.T) {
	target := &tgbotapi.User{ID: 9, FirstName: "Yuki"}
	msg := &tgbotapi.Message{
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command"},
			{Type: "text_mention", User: target},
		},
	}

	got, ok := opponentFromMessage(msg)
	if !ok || got.ID != 9 {
		t.Fatalf("opponentFromMessage = (%v, %v), want text-mention user", got, ok)
	}
}

func TestOpponentMissing(t *testing.T) {
	msg := &tgbotapi.Message{
		Entities: []tgbotapi.MessageEntity{{Type: "mention"}},
	}
	if _, ok := opponentFromMessage(msg); ok {
		t.Fatal("expected no opponent for a plain @mention")
	}
}

func TestLastField(t *testing.T) {
	if got := lastField(""); got != "" {
		t.Errorf("lastField(\"\") = %q", got)
	}
	if got := lastField("bo3"); got != "bo3" {
		t.Errorf("lastField = %q, want bo3", got)
	}
	if got := lastField("  foo  bo3 "); got != "bo3" {
		t.Errorf("lastField = %q, want bo3", got)
	}
}
