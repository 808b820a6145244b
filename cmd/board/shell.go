package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"projectboard/internal/app"
	"projectboard/internal/domain"
	"projectboard/internal/store"
)

var errQuit = errors.New("quit")

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive board session",
		Long: `Reads one command per line from stdin:

  add --title T --description D --people N
  move <id|"#n"> <active|finished>
  list [active|finished]
  log [--limit N]
  help
  quit

Records live for the rest of the session only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd.Context(), store.Instance(), cmd.ErrOrStderr(), func(ctx context.Context, b *app.Board) error {
				return runShell(ctx, b, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

func runShell(ctx context.Context, b *app.Board, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	prompt := func() { fmt.Fprint(out, "> ") }
	prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			prompt()
			continue
		}
		args, err := shellwords.Parse(line)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			prompt()
			continue
		}
		err = execLine(ctx, b, args, out)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		}
		prompt()
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

// execLine runs one shell line through a fresh command tree, so flag values
// never leak from one line into the next.
func execLine(ctx context.Context, b *app.Board, args []string, out io.Writer) error {
	root := &cobra.Command{
		Use:           "board>",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.AddCommand(shellAddCmd(b), shellMoveCmd(b), shellListCmd(b), shellLogCmd(b))
	root.AddCommand(&cobra.Command{
		Use:     "quit",
		Aliases: []string{"exit"},
		Short:   "Leave the shell",
		RunE:    func(*cobra.Command, []string) error { return errQuit },
	})
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func shellAddCmd(b *app.Board) *cobra.Command {
	var title, description, people string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := b.Input.Submit(title, description, people)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description")
	cmd.Flags().StringVarP(&people, "people", "p", "", "number of people (assignees)")
	return cmd
}

func shellMoveCmd(b *app.Board) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id|#n> <active|finished>",
		Short: "Drop a project onto a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}
			id, ok := b.Resolve(args[0])
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: no project %s\n", args[0])
				return nil
			}
			rec, _ := b.Store.Get(id)
			if rec.Status == status {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already %s\n", id, status)
				return nil
			}
			b.List(status).Drop(id)
			fmt.Fprintf(cmd.OutOrStdout(), "moved %s to %s\n", id, status)
			return nil
		},
	}
}

func shellListCmd(b *app.Board) *cobra.Command {
	return &cobra.Command{
		Use:   "list [active|finished]",
		Short: "Show the lists",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON := viper.GetBool("json")
			if len(args) == 0 {
				return b.Render(cmd.OutOrStdout(), asJSON)
			}
			status, err := domain.ParseStatus(args[0])
			if err != nil {
				return err
			}
			l := b.List(status)
			if asJSON {
				return l.RenderJSON(cmd.OutOrStdout())
			}
			l.Render(cmd.OutOrStdout())
			return nil
		},
	}
}

func shellLogCmd(b *app.Board) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent board activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJournal(cmd.Context(), cmd.OutOrStdout(), b, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}

func printJournal(ctx context.Context, w io.Writer, b *app.Board, limit int) error {
	if b.Journal == nil {
		return errors.New("journal is disabled in board.yml")
	}
	entries, err := b.Journal.Tail(ctx, limit)
	if err != nil {
		return err
	}
	if viper.GetBool("json") {
		if entries == nil {
			entries = []domain.Entry{}
		}
		return printJSON(w, entries)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", "Time", "Kind", "Record", "Title", "Status"})
	for _, e := range entries {
		status := e.ToStatus
		if e.FromStatus != "" {
			status = e.FromStatus + " -> " + e.ToStatus
		}
		tw.AppendRow(table.Row{e.ID, e.TS, e.Kind, e.RecordID, e.Title, status})
	}
	tw.Render()
	return nil
}
