// Package cli is the operator console: local password analysis and minting
// bearer tokens for the HTTP API.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/common"
	"github.com/dmitrijs2005/secanalytics/internal/password"
	"github.com/dmitrijs2005/secanalytics/internal/server/auth"
	"github.com/dmitrijs2005/secanalytics/internal/server/models"
)

const helpText = `Available commands:
  analyze                     check a password (input is not echoed)
  token <user|admin> [name]   print a bearer token for the HTTP API
  help                        show this help
  exit                        leave`

type App struct {
	in       *bufio.Reader
	out      io.Writer
	analyzer *password.Analyzer
	secret   []byte
	ttl      time.Duration
}

func NewApp(in io.Reader, out io.Writer, secret string, ttl time.Duration) *App {
	return &App{
		in:       bufio.NewReader(in),
		out:      out,
		analyzer: password.NewAnalyzer(),
		secret:   []byte(secret),
		ttl:      ttl,
	}
}

// Exec runs args as a single command, or the interactive loop when args is
// empty.
func (a *App) Exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.Root(ctx)
	}
	_, err := a.dispatch(args[0], args[1:])
	return err
}

// Root is the interactive loop. It ends on "exit", EOF or ctx cancellation.
func (a *App) Root(ctx context.Context) error {
	fmt.Fprintln(a.out, "secanalytics console (type 'help' for commands)")

	for ctx.Err() == nil {
		line, err := GetSimpleText(a.in, "secanalytics> ", a.out)
		if err != nil {
			fmt.Fprintln(a.out)
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		done, err := a.dispatch(parts[0], parts[1:])
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
		}
		if done {
			return nil
		}
	}
	return nil
}

func (a *App) dispatch(cmd string, args []string) (done bool, err error) {
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, helpText)
	case "analyze", "a":
		return false, a.analyze()
	case "token":
		return false, a.token(args)
	case "exit", "quit", "q":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q", cmd)
	}
	return false, nil
}

func (a *App) analyze() error {
	pw, err := GetPassword(a.in, a.out)
	if err != nil {
		return err
	}
	defer wipe(pw)

	PrintAnalysis(a.out, a.analyzer.Analyze(string(pw)))
	return nil
}

func (a *App) token(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: token <user|admin> [name]")
	}
	role := args[0]
	if role != common.RoleUser && role != common.RoleAdmin {
		return fmt.Errorf("unknown role %q", role)
	}
	name := "operator"
	if len(args) > 1 {
		name = args[1]
	}

	tok, err := auth.GenerateToken(name, role, a.secret, a.ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, tok)
	return nil
}

func PrintAnalysis(w io.Writer, r models.PasswordAnalysis) {
	fmt.Fprintf(w, "Score:      %d/100 (%s)\n", r.Score, r.Strength)
	fmt.Fprintf(w, "Entropy:    %.2f bits\n", r.Entropy)
	fmt.Fprintf(w, "Crack time: %s\n", r.EstimatedCrackTime)
	for _, v := range r.Vulnerabilities {
		fmt.Fprintf(w, "  ! %s\n", v)
	}
	for _, s := range r.Suggestions {
		fmt.Fprintf(w, "  > %s\n", s)
	}
}
