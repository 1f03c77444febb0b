package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zero-day-ai/graphqa/cmd/graphqa/internal"
	"github.com/zero-day-ai/graphqa/internal/conversation"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation over the knowledge graph.

Each answer is followed by the last three exchanges and the most recent
generated query. Recent exchanges are fed back as context for follow-up
questions.

Commands:
  /history   show every exchange so far
  /reset     forget the conversation
  /help      show this help
  /quit      exit (also /exit or Ctrl+D)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

var chatStrategy string

// chatDisplayTurns is how many exchanges are shown after each answer.
const chatDisplayTurns = 3

func init() {
	chatCmd.Flags().StringVarP(&chatStrategy, "strategy", "s", "", "Retrieval strategy (default: retrieval.strategy from config)")
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(cmd, a)

	p, err := a.Pipeline(chatStrategy)
	if err != nil {
		return err
	}

	s := &chatSession{
		newState: a.NewState,
		runner:   p,
		logger:   a.Logger,
		in:       cmd.InOrStdin(),
		out:      cmd.OutOrStdout(),
		format:   formatter(cmd),
		prompt:   isInteractive(cmd.InOrStdin()),
	}
	s.reset()
	if s.prompt {
		fmt.Fprintf(s.out, "graphqa chat (%s). Type /help for commands.\n", p.Strategy())
	}
	return s.run(cmd.Context())
}

func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// chatSession is one REPL over a conversation state.
type chatSession struct {
	newState func() *conversation.State
	runner   conversation.Runner
	logger   *slog.Logger
	in       io.Reader
	out      io.Writer
	format   internal.Formatter
	prompt   bool

	chat *conversation.Chat
}

func (s *chatSession) reset() {
	s.chat = conversation.NewChat(s.newState(), s.runner, s.logger)
}

func (s *chatSession) run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if s.prompt {
			fmt.Fprint(s.out, "you> ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if s.handleCommand(input) {
				return nil
			}
			continue
		}

		if err := s.turn(ctx, input); err != nil {
			return err
		}
	}
}

// turn answers one question. A failed turn shows the fallback answer and
// the conversation continues; only cancellation ends the session.
func (s *chatSession) turn(ctx context.Context, question string) error {
	_, err := s.chat.Ask(ctx, question)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	state := s.chat.State()
	turns := make([]internal.Turn, 0, chatDisplayTurns)
	for _, ex := range state.Recent(chatDisplayTurns) {
		turns = append(turns, internal.Turn{Question: ex.Question, Answer: ex.Answer, Query: ex.Query})
	}
	return s.format.PrintTurns(turns, state.LatestQuery())
}

// handleCommand runs a slash command and reports whether to exit.
func (s *chatSession) handleCommand(input string) bool {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/exit":
		return true
	case "/history":
		state := s.chat.State()
		var turns []internal.Turn
		for _, ex := range state.Exchanges() {
			turns = append(turns, internal.Turn{Question: ex.Question, Answer: ex.Answer, Query: ex.Query})
		}
		_ = s.format.PrintTurns(turns, state.LatestQuery())
	case "/reset":
		s.reset()
		fmt.Fprintln(s.out, "conversation reset")
	case "/help":
		fmt.Fprintln(s.out, "/history  /reset  /help  /quit")
	default:
		_ = s.format.PrintError("unknown command " + input)
	}
	return false
}
