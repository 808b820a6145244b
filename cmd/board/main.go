package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"projectboard/internal/app"
	"projectboard/internal/config"
	"projectboard/internal/store"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "board",
		Short: "Project board",
		Long: `board keeps a list of projects in memory and shows them in two lists,
active and finished. Projects are added through a validated form and moved
between lists by id. Nothing is saved when the process exits; use 'board shell'
for an interactive session or 'board run' to replay a YAML script.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cobra.OnInitialize(initConfig)
	root.PersistentFlags().StringP("workspace", "w", ".", "workspace directory holding board.yml")
	root.PersistentFlags().String("config", "", "config file (overrides <workspace>/board.yml)")
	root.PersistentFlags().Bool("json", false, "output JSON")
	root.PersistentFlags().BoolP("verbose", "v", false, "log board activity to stderr")
	_ = viper.BindPFlag("workspace", root.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("json", root.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(shellCmd())
	root.AddCommand(runCmd())
	root.AddCommand(configCmd())
	return root
}

func initConfig() {
	viper.SetEnvPrefix("BOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newLogger(w io.Writer) *log.Logger {
	if !viper.GetBool("verbose") {
		return log.New(io.Discard, "", 0)
	}
	return log.New(w, "board: ", log.LstdFlags)
}

func loadConfig() (*config.Config, error) {
	if path := viper.GetString("config"); path != "" {
		return config.FromFile(path)
	}
	return config.LoadOptional(viper.GetString("workspace"))
}

// withBoard builds a board around s for the duration of fn.
func withBoard(ctx context.Context, s *store.Store, errOut io.Writer, fn func(context.Context, *app.Board) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := app.New(ctx, s, cfg, app.Options{Logger: newLogger(errOut)})
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(ctx, b)
}

func runCmd() *cobra.Command {
	var showLog bool
	cmd := &cobra.Command{
		Use:   "run <script.yml>",
		Short: "Run a script of board actions and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := app.LoadScript(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return withBoard(cmd.Context(), store.New(), cmd.ErrOrStderr(), func(ctx context.Context, b *app.Board) error {
				results, runErr := b.RunScript(ctx, script)
				for _, r := range results {
					if r.Skipped != "" {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: step %d: %s %s: %s\n", r.Index, r.Action, r.ID, r.Skipped)
					}
				}
				if runErr != nil {
					return runErr
				}
				if err := b.Render(out, viper.GetBool("json")); err != nil {
					return err
				}
				if showLog {
					return printJournal(ctx, out, b, 0)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showLog, "log", false, "print the activity journal after the lists")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Inspect board configuration"}
	cfg.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), c)
			}
			out, err := c.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	})
	cfg.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate board.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("config")
			if path == "" {
				path = config.Path(viper.GetString("workspace"))
			}
			if _, err := config.FromFile(path); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), map[string]any{"path": path, "valid": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
			return nil
		},
	})
	cfg.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default board.yml into the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})
	return cfg
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
