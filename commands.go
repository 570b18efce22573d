package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const aboutMsg = "AyaBot - Beta\n" +
	"Get to know your FKUI 2017 friends!\n" +
	"---\n" +
	"Created by laymonage (CSUI 2017) for FKUI 2017\n" +
	"Suggested by skyselvlz\n" +
	"Source code available at https://github.com/skyselvlz/Aya\n"

const helpMsg = "/about: send the about message\n" +
	"/help: send this help message\n" +
	"/bye: make me leave this chat room\n" +
	"/start: start the game\n" +
	"/restart: restart the game\n" +
	"/answer <name>: answer the person in the picture with <name>\n" +
	"/pass : skip the current person\n" +
	"/status: show your current game's status\n" +
	"/bugreport <message>: send a bug report to the developer"

type Verb int

const (
	verbNone Verb = iota
	verbAbout
	verbHelp
	verbBye
	verbStart
	verbRestart
	verbAnswer
	verbPass
	verbStatus
	verbBugReport
	verbBugs
	verbBugDel
)

// parseCommand resolves the message text to a single verb and its
// argument. First match wins, so one input maps to exactly one verb.
// Anything that is not a command resolves to verbNone and gets no
// reply at all.
func parseCommand(text string) (Verb, string) {
	if !strings.HasPrefix(text, "/") {
		return verbNone, ""
	}

	command := strings.TrimSpace(text[1:])
	lowered := strings.ToLower(command)

	switch {
	case strings.HasPrefix(lowered, "about"):
		return verbAbout, ""
	case strings.HasPrefix(lowered, "help"):
		return verbHelp, ""
	case strings.HasPrefix(lowered, "bye"):
		return verbBye, ""
	case strings.HasPrefix(lowered, "restart"):
		return verbRestart, ""
	case strings.HasPrefix(lowered, "start"):
		return verbStart, ""
	case strings.HasPrefix(lowered, "answer "):
		return verbAnswer, command[len("answer "):]
	case strings.HasPrefix(lowered, "pass"):
		return verbPass, ""
	case strings.HasPrefix(lowered, "status"):
		return verbStatus, ""
	case strings.HasPrefix(lowered, "bugreport "):
		return verbBugReport, command[len("bugreport "):]
	case strings.HasPrefix(lowered, "bugdel "):
		return verbBugDel, strings.TrimSpace(command[len("bugdel "):])
	case strings.HasPrefix(lowered, "bugs"):
		return verbBugs, ""
	}

	return verbNone, ""
}

// Reply is what one inbound command produces: the messages to deliver,
// and whether the bot should leave the chat afterwards.
type Reply struct {
	Messages []any
	Leave    bool
}

func textOnly(text string) Reply {
	return Reply{Messages: []any{textReply(text)}}
}

// Interpreter dispatches inbound commands against the registry, the
// bug log and the asset source. It holds no per-command state.
type Interpreter struct {
	cfg      *Config
	registry *Registry
	bugs     *BugLog
	assets   AssetSource
}

func newInterpreter(cfg *Config, registry *Registry, bugs *BugLog, assets AssetSource) *Interpreter {
	return &Interpreter{
		cfg:      cfg,
		registry: registry,
		bugs:     bugs,
		assets:   assets,
	}
}

func (in *Interpreter) Handle(ctx context.Context, src Source, text string) Reply {
	verb, arg := parseCommand(text)
	owner := src.Owner()

	switch verb {
	case verbAbout:
		return textOnly(aboutMsg)

	case verbHelp:
		return textOnly(helpMsg)

	case verbBye:
		if !src.Shared() {
			return textOnly("I can't leave a 1:1 chat.")
		}

		in.registry.Remove(owner)

		msg := "Leaving group..."
		if src.Kind == SourceRoom {
			msg = "Leaving room..."
		}

		return Reply{Messages: []any{textReply(msg)}, Leave: true}

	case verbStart:
		if in.registry.Start(owner, false) == Rejected {
			return textOnly("Your game is still in progress.\nUse /restart to restart your progress.")
		}

		return in.nextRound(ctx, in.registry.Get(owner), textReply("Starting game..."))

	case verbRestart:
		in.registry.Start(owner, true)

		return in.nextRound(ctx, in.registry.Get(owner), textReply("Starting game..."))

	case verbAnswer:
		return in.scoreRound(ctx, owner, arg)

	case verbPass:
		return in.scoreRound(ctx, owner, "pass")

	case verbStatus:
		s, msg := in.eligible(owner)
		if s == nil {
			return textOnly(msg)
		}

		return textOnly(formatStatus(s.Status()))

	case verbBugReport:
		in.bugs.Add(arg)

		return textOnly("Bug report sent!")

	case verbBugs:
		if src.UserID != in.cfg.adminUser {
			return textOnly("Not allowed.")
		}

		all := in.bugs.All()
		if len(all) == 0 {
			return textOnly("Empty.")
		}

		return textOnly(strings.Join(all, "\n"))

	case verbBugDel:
		if src.UserID != in.cfg.adminUser {
			return textOnly("Not allowed.")
		}

		switch err := in.bugs.Remove(arg); {
		case errors.Is(err, errBadIndex):
			return textOnly("Nope! Wrong index value.")
		case errors.Is(err, errIndexOutOfRange):
			return textOnly("Nope! Index not found.")
		default:
			return textOnly("Removed.")
		}
	}

	return Reply{}
}

// eligible returns the owner's active session, or nil plus the reply
// explaining why there is none. "Never played" and "already finished"
// are deliberately distinct messages.
func (in *Interpreter) eligible(owner string) (*Session, string) {
	s := in.registry.Get(owner)

	switch {
	case s == nil:
		return nil, "You've never played the game before."
	case s.Finished():
		return nil, "You have finished the game.\nUse /start to start a new one."
	}

	return s, ""
}

// scoreRound scores the current pick and, unless the game just ended,
// rolls the next round into the same reply.
func (in *Interpreter) scoreRound(ctx context.Context, owner, answer string) Reply {
	s, msg := in.eligible(owner)
	if s == nil {
		return textOnly(msg)
	}

	result, err := s.Score(answer)
	if err != nil {
		logf(in.cfg, "GAME: score for %s: %v", owner, err)

		return Reply{}
	}

	if s.Finished() {
		return Reply{Messages: []any{
			textReply(formatScore(result)),
			textReply("You've finished the game!\n" + formatStatus(s.Status())),
		}}
	}

	return in.nextRound(ctx, s, textReply(formatScore(result)))
}

// nextRound assigns the next pick and appends its photo and the round
// prompt to leads. The pick is assigned before the link fetch, and a
// fetch failure records no score, so retrying the command is safe.
func (in *Interpreter) nextRound(ctx context.Context, s *Session, leads ...any) Reply {
	person, err := s.PickNext()
	if err != nil {
		logf(in.cfg, "GAME: pick for %s: %v", s.owner, err)

		return Reply{Messages: leads}
	}

	link, err := in.assets.TemporaryLink(ctx, person)
	if err != nil {
		logf(in.cfg, "GAME: link for %s: %v", s.owner, err)

		return Reply{Messages: append(leads, textReply("I couldn't fetch the photo. Please try again."))}
	}

	return Reply{Messages: append(leads, imageReply(link), textReply("Who is this person?"))}
}

func formatScore(result ScoreResult) string {
	subject, object := result.Person.Category.Pronouns()

	switch result.Outcome {
	case OutcomeSkipped:
		return fmt.Sprintf("%s is %s. Remember %s next time!", subject, result.Person.Name, object)
	case OutcomeCorrect:
		return fmt.Sprintf("You are correct! %s is %s.", subject, result.Person.Name)
	default:
		return fmt.Sprintf("You are wrong! %s is %s. Remember %s next time!", subject, result.Person.Name, object)
	}
}

func formatStatus(st StatusSnapshot) string {
	return fmt.Sprintf("%d/%d persons.\nCorrect: %d (%.2f%%)\nWrong: %d\nSkipped: %d",
		st.Answered, st.Total, st.Correct, st.CorrectRate*100, st.Wrong, st.Skipped)
}
