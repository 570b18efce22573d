package main

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeAssets struct {
	names map[Category][]string
	fail  bool
}

func (f *fakeAssets) ListCategory(_ context.Context, category Category) ([]string, error) {
	return f.names[category], nil
}

func (f *fakeAssets) TemporaryLink(_ context.Context, person Identity) (string, error) {
	if f.fail {
		return "", fmt.Errorf("%w: storage is down", errAssetUnavailable)
	}
	return "https://cdn.example.com/" + person.Category.Folder() + "/" + person.Name + ".jpg", nil
}

func testInterpreter(roster *Roster) *Interpreter {
	cfg := &Config{adminUser: "admin-id"}
	return newInterpreter(cfg, newRegistry(roster), newBugLog(), &fakeAssets{})
}

func userSource(id string) Source {
	return Source{Kind: SourceUser, UserID: id}
}

func textAt(t *testing.T, reply Reply, i int) string {
	t.Helper()

	if i >= len(reply.Messages) {
		t.Fatalf("reply has %d messages, wanted index %d", len(reply.Messages), i)
	}
	msg, ok := reply.Messages[i].(TextReply)
	if !ok {
		t.Fatalf("message %d is %T, want TextReply", i, reply.Messages[i])
	}
	return msg.Text
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		text string
		verb Verb
		arg  string
	}{
		{"/about", verbAbout, ""},
		{"/ABOUT this bot", verbAbout, ""},
		{"/help", verbHelp, ""},
		{"/bye", verbBye, ""},
		{"/start", verbStart, ""},
		{"/restart", verbRestart, ""},
		{"/status", verbStatus, ""},
		{"/answer Bob", verbAnswer, "Bob"},
		{"/Answer bOb Smith", verbAnswer, "bOb Smith"},
		{"/answer", verbNone, ""},
		{"/pass", verbPass, ""},
		{"/passing by", verbPass, ""},
		{"/bugreport it broke", verbBugReport, "it broke"},
		{"/bugreport", verbNone, ""},
		{"/bugs", verbBugs, ""},
		{"/bugdel 3", verbBugDel, "3"},
		{"/bugdel", verbNone, ""},
		{"/frobnicate", verbNone, ""},
		{"hello there", verbNone, ""},
		{"", verbNone, ""},
	}

	for _, tc := range cases {
		verb, arg := parseCommand(tc.text)
		if verb != tc.verb || arg != tc.arg {
			t.Fatalf("parseCommand(%q) = (%v, %q), want (%v, %q)", tc.text, verb, arg, tc.verb, tc.arg)
		}
	}
}

func TestParseCommandResolvesExactlyOneVerb(t *testing.T) {
	// "restart" must never fall through to "start" as well; the verb is
	// resolved once, first match wins.
	verb, _ := parseCommand("/restart")
	if verb != verbRestart {
		t.Fatalf("verb = %v, want verbRestart", verb)
	}
}

func TestHandleAboutAndHelp(t *testing.T) {
	in := testInterpreter(testRoster())

	reply := in.Handle(context.Background(), userSource("u1"), "/about")
	if got := textAt(t, reply, 0); got != aboutMsg {
		t.Fatalf("about reply = %q", got)
	}

	reply = in.Handle(context.Background(), userSource("u1"), "/help")
	if got := textAt(t, reply, 0); got != helpMsg {
		t.Fatalf("help reply = %q", got)
	}
}

func TestHandleUnknownCommandIsSilent(t *testing.T) {
	in := testInterpreter(testRoster())

	for _, text := range []string{"/frobnicate", "not a command", ""} {
		reply := in.Handle(context.Background(), userSource("u1"), text)
		if len(reply.Messages) != 0 || reply.Leave {
			t.Fatalf("input %q produced a reply: %+v", text, reply)
		}
	}
}

func TestHandleStartFlow(t *testing.T) {
	in := testInterpreter(testRoster())
	src := userSource("u1")

	reply := in.Handle(context.Background(), src, "/start")
	if len(reply.Messages) != 3 {
		t.Fatalf("start reply has %d messages, want 3", len(reply.Messages))
	}
	if got := textAt(t, reply, 0); got != "Starting game..." {
		t.Fatalf("start banner = %q", got)
	}
	img, ok := reply.Messages[1].(ImageReply)
	if !ok {
		t.Fatalf("message 1 is %T, want ImageReply", reply.Messages[1])
	}
	if img.OriginalContentURL == "" || img.PreviewImageURL != img.OriginalContentURL {
		t.Fatalf("unexpected image message: %+v", img)
	}
	if got := textAt(t, reply, 2); got != "Who is this person?" {
		t.Fatalf("prompt = %q", got)
	}

	reply = in.Handle(context.Background(), src, "/start")
	if got := textAt(t, reply, 0); got != "Your game is still in progress.\nUse /restart to restart your progress." {
		t.Fatalf("second start reply = %q", got)
	}

	reply = in.Handle(context.Background(), src, "/restart")
	if len(reply.Messages) != 3 {
		t.Fatalf("restart reply has %d messages, want 3", len(reply.Messages))
	}
}

func TestHandleAnswerFlow(t *testing.T) {
	roster := &Roster{people: []Identity{{Name: "Bob", Category: CategoryMale}}}
	in := testInterpreter(roster)
	src := userSource("u1")

	in.Handle(context.Background(), src, "/start")

	reply := in.Handle(context.Background(), src, "/answer Robert Bob")
	if len(reply.Messages) != 2 {
		t.Fatalf("final answer reply has %d messages, want 2", len(reply.Messages))
	}
	if got := textAt(t, reply, 0); got != "You are correct! He is Bob." {
		t.Fatalf("result = %q", got)
	}
	if got := textAt(t, reply, 1); !strings.HasPrefix(got, "You've finished the game!\n") {
		t.Fatalf("finish banner = %q", got)
	}
	if !strings.Contains(textAt(t, reply, 1), "1/1 persons.") {
		t.Fatalf("finish banner missing status: %q", textAt(t, reply, 1))
	}
}

func TestHandleAnswerMidGameRollsNextRound(t *testing.T) {
	roster := &Roster{people: []Identity{
		{Name: "Alice", Category: CategoryFemale},
		{Name: "Bob", Category: CategoryMale},
	}}
	in := testInterpreter(roster)
	src := userSource("u1")

	in.Handle(context.Background(), src, "/start")

	reply := in.Handle(context.Background(), src, "/pass")
	if len(reply.Messages) != 3 {
		t.Fatalf("pass reply has %d messages, want 3", len(reply.Messages))
	}
	result := textAt(t, reply, 0)
	if result != "She is Alice. Remember her next time!" && result != "He is Bob. Remember him next time!" {
		t.Fatalf("pass result = %q", result)
	}
	if got := textAt(t, reply, 2); got != "Who is this person?" {
		t.Fatalf("prompt = %q", got)
	}
}

func TestHandleEligibilityMessages(t *testing.T) {
	roster := &Roster{people: []Identity{{Name: "Bob", Category: CategoryMale}}}
	in := testInterpreter(roster)
	src := userSource("u1")

	reply := in.Handle(context.Background(), src, "/status")
	if got := textAt(t, reply, 0); got != "You've never played the game before." {
		t.Fatalf("never-played reply = %q", got)
	}

	in.Handle(context.Background(), src, "/start")
	in.Handle(context.Background(), src, "/pass")

	reply = in.Handle(context.Background(), src, "/status")
	if got := textAt(t, reply, 0); got != "You have finished the game.\nUse /start to start a new one." {
		t.Fatalf("finished reply = %q", got)
	}
}

func TestHandleStatusFormatting(t *testing.T) {
	roster := &Roster{people: []Identity{
		{Name: "Alice", Category: CategoryFemale},
		{Name: "Bob", Category: CategoryMale},
	}}
	in := testInterpreter(roster)
	src := userSource("u1")

	in.Handle(context.Background(), src, "/start")
	in.Handle(context.Background(), src, "/pass")

	reply := in.Handle(context.Background(), src, "/status")
	want := "1/2 persons.\nCorrect: 0 (0.00%)\nWrong: 0\nSkipped: 1"
	if got := textAt(t, reply, 0); got != want {
		t.Fatalf("status = %q, want %q", got, want)
	}
}

func TestHandleByeVariants(t *testing.T) {
	in := testInterpreter(testRoster())

	reply := in.Handle(context.Background(), userSource("u1"), "/bye")
	if got := textAt(t, reply, 0); got != "I can't leave a 1:1 chat." {
		t.Fatalf("1:1 bye reply = %q", got)
	}
	if reply.Leave {
		t.Fatal("1:1 bye should not request leaving")
	}

	group := Source{Kind: SourceGroup, UserID: "u1", GroupID: "g1"}
	in.Handle(context.Background(), group, "/start")

	reply = in.Handle(context.Background(), group, "/bye")
	if got := textAt(t, reply, 0); got != "Leaving group..." {
		t.Fatalf("group bye reply = %q", got)
	}
	if !reply.Leave {
		t.Fatal("group bye should request leaving")
	}
	if in.registry.Get("g1") != nil {
		t.Fatal("group session should be removed on bye")
	}

	room := Source{Kind: SourceRoom, UserID: "u1", RoomID: "r1"}
	reply = in.Handle(context.Background(), room, "/bye")
	if got := textAt(t, reply, 0); got != "Leaving room..." {
		t.Fatalf("room bye reply = %q", got)
	}
}

func TestGroupMembersShareOneSession(t *testing.T) {
	in := testInterpreter(testRoster())

	alice := Source{Kind: SourceGroup, UserID: "alice", GroupID: "g1"}
	bob := Source{Kind: SourceGroup, UserID: "bob", GroupID: "g1"}

	in.Handle(context.Background(), alice, "/start")

	reply := in.Handle(context.Background(), bob, "/start")
	if got := textAt(t, reply, 0); !strings.HasPrefix(got, "Your game is still in progress.") {
		t.Fatalf("second member's start = %q", got)
	}
}

func TestHandleBugVerbs(t *testing.T) {
	in := testInterpreter(testRoster())
	admin := userSource("admin-id")
	stranger := userSource("someone-else")

	reply := in.Handle(context.Background(), stranger, "/bugs")
	if got := textAt(t, reply, 0); got != "Not allowed." {
		t.Fatalf("non-admin bugs reply = %q", got)
	}

	reply = in.Handle(context.Background(), admin, "/bugs")
	if got := textAt(t, reply, 0); got != "Empty." {
		t.Fatalf("empty bugs reply = %q", got)
	}

	reply = in.Handle(context.Background(), stranger, "/bugreport photos are sideways")
	if got := textAt(t, reply, 0); got != "Bug report sent!" {
		t.Fatalf("bugreport reply = %q", got)
	}
	in.Handle(context.Background(), stranger, "/bugreport wrong pronoun")

	reply = in.Handle(context.Background(), admin, "/bugs")
	if got := textAt(t, reply, 0); got != "photos are sideways\nwrong pronoun" {
		t.Fatalf("bugs listing = %q", got)
	}

	reply = in.Handle(context.Background(), stranger, "/bugdel 1")
	if got := textAt(t, reply, 0); got != "Not allowed." {
		t.Fatalf("non-admin bugdel reply = %q", got)
	}

	reply = in.Handle(context.Background(), admin, "/bugdel abc")
	if got := textAt(t, reply, 0); got != "Nope! Wrong index value." {
		t.Fatalf("bad index reply = %q", got)
	}

	reply = in.Handle(context.Background(), admin, "/bugdel 99")
	if got := textAt(t, reply, 0); got != "Nope! Index not found." {
		t.Fatalf("out of range reply = %q", got)
	}

	reply = in.Handle(context.Background(), admin, "/bugdel 1")
	if got := textAt(t, reply, 0); got != "Removed." {
		t.Fatalf("bugdel reply = %q", got)
	}

	reply = in.Handle(context.Background(), admin, "/bugs")
	if got := textAt(t, reply, 0); got != "wrong pronoun" {
		t.Fatalf("bugs after delete = %q", got)
	}
}

func TestHandleAssetFailureRecordsNoScore(t *testing.T) {
	cfg := &Config{adminUser: "admin-id"}
	registry := newRegistry(testRoster())
	in := newInterpreter(cfg, registry, newBugLog(), &fakeAssets{fail: true})
	src := userSource("u1")

	reply := in.Handle(context.Background(), src, "/start")
	if len(reply.Messages) != 2 {
		t.Fatalf("failed start reply has %d messages, want 2", len(reply.Messages))
	}
	if got := textAt(t, reply, 1); got != "I couldn't fetch the photo. Please try again." {
		t.Fatalf("failure reply = %q", got)
	}

	s := registry.Get("u1")
	if s == nil {
		t.Fatal("session should exist")
	}
	if got := s.Status().Answered; got != 0 {
		t.Fatalf("answered = %d after failed link fetch, want 0", got)
	}
}
