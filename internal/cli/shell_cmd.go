package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittodav/internal/logger"
)

const shellPrompt = "dittodav> "

// NewShellCmd runs commands read from stdin against one session, so the
// path cache and locks of the acting user persist between them. The
// metrics server runs for the lifetime of the shell when enabled.
func NewShellCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "run several commands over one session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if server := deps.Metrics.Server; server != nil {
				go func() {
					if err := server.Start(ctx); err != nil {
						logger.Error("Metrics server error: %v", err)
					}
				}()
				defer func() {
					if err := server.Stop(context.Background()); err != nil {
						logger.Warn("Failed to stop metrics server: %v", err)
					}
				}()
			}

			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, shellPrompt)
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}

				words, err := splitWords(scanner.Text())
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					continue
				}
				if len(words) == 0 {
					continue
				}
				switch words[0] {
				case "exit", "quit":
					return nil
				case "shell":
					fmt.Fprintln(cmd.ErrOrStderr(), "error: already in a shell")
					continue
				}

				if err := runShellLine(ctx, cmd, deps, words); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				}
			}
		},
	}
}

// runShellLine executes one line with a fresh command tree bound to the
// shell's session. Global flags on the line are parsed but do not change
// the session.
func runShellLine(ctx context.Context, parent *cobra.Command, deps *Deps, words []string) error {
	lineDeps := &Deps{
		Config:     deps.Config,
		Repository: deps.Repository,
		Metrics:    deps.Metrics,
		session:    deps.session,
		backend:    deps.backend,
	}

	cmd := NewRootCmd(lineDeps)
	cmd.SetArgs(words)
	cmd.SetIn(parent.InOrStdin())
	cmd.SetOut(parent.OutOrStdout())
	cmd.SetErr(parent.ErrOrStderr())
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(ctx)
}

// splitWords splits a line on spaces, honoring single and double quotes
// and backslash escapes.
func splitWords(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}
