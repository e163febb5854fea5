package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/oshokin/stopwatch-board/internal/service/client"
)

// Board is the set of operations the shell dispatches to.
type Board interface {
	List(ctx context.Context) error
	Get(ctx context.Context, id string) error
	Create(ctx context.Context, name string) error
	Start(ctx context.Context, id string) error
	Pause(ctx context.Context, id string) error
	Reset(ctx context.Context, id string) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// Compile-time assertion that client.Commands implements Board.
var _ Board = (*client.Commands)(nil)

// Shell handles interactive mode for stopwatchctl.
type Shell struct {
	board Board
	rl    *readline.Instance
}

// errUsage is wrapped by argument errors.
var errUsage = errors.New("usage")

// New creates an interactive shell over board.
func New(board Board) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "stopwatch> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("create readline: %w", err)
	}

	return &Shell{
		board: board,
		rl:    rl,
	}, nil
}

// Stdout returns a writer that coordinates with the prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run reads commands until exit, EOF or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	defer s.rl.Close()

	printHelp(s.rl.Stdout())

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := s.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}

		if err != nil {
			return nil //nolint:nilerr // EOF ends the session.
		}

		quit, err := Execute(ctx, s.board, s.rl.Stdout(), line)
		if err != nil {
			_, _ = fmt.Fprintf(s.rl.Stdout(), "error: %v\n", err)
		}

		if quit {
			return nil
		}
	}
}

// Execute runs one command line against board. It reports whether the
// session should end.
//
//nolint:cyclop // One case per command.
func Execute(ctx context.Context, board Board, out io.Writer, line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		printHelp(out)

		return false, nil
	case "quit", "exit", "q":
		return true, nil
	case "list", "ls":
		return false, board.List(ctx)
	case "new", "create":
		return false, board.Create(ctx, strings.Join(args, " "))
	case "rename", "mv":
		if len(args) < 1 {
			return false, fmt.Errorf("%w: rename <id> [name]", errUsage)
		}

		return false, board.Rename(ctx, args[0], strings.Join(args[1:], " "))
	}

	op, ok := byID(board)[cmd]
	if !ok {
		return false, fmt.Errorf("unknown command %q (type 'help' for commands)", cmd)
	}

	if len(args) != 1 {
		return false, fmt.Errorf("%w: %s <id>", errUsage, cmd)
	}

	return false, op(ctx, args[0])
}

// byID maps single-id commands and their aliases to board operations.
func byID(board Board) map[string]func(context.Context, string) error {
	return map[string]func(context.Context, string) error{
		"get":    board.Get,
		"show":   board.Get,
		"start":  board.Start,
		"pause":  board.Pause,
		"stop":   board.Pause,
		"reset":  board.Reset,
		"delete": board.Delete,
		"rm":     board.Delete,
	}
}

// completer suggests command names.
func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("list"),
		readline.PcItem("new"),
		readline.PcItem("get"),
		readline.PcItem("start"),
		readline.PcItem("pause"),
		readline.PcItem("reset"),
		readline.PcItem("rename"),
		readline.PcItem("delete"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

func printHelp(out io.Writer) {
	_, _ = fmt.Fprintln(out, `
Stopwatch Board Commands:
    list               - Show every stopwatch
    new [name]         - Add a stopwatch (default name if omitted)
    get <id>           - Show one stopwatch
    start <id>         - Start counting
    pause <id>         - Stop counting, keep the time
    reset <id>         - Zero the time
    rename <id> [name] - Change the label (blank resets it)
    delete <id>        - Remove a stopwatch
    help               - Show this help
    exit               - Leave the shell`)
}
