package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	fluentdb "github.com/biyonik/go-fluent-db"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config string
	Format string // "json" | "text"
	Debug  bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fluentdb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fluentdb",
		Short: "fluentdb - fluent SQL builder",
		Long:  "Build, inspect and run fluent SQL queries against a configured database.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "log executed queries to stderr")

	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return lo.Contains(ValidFormats, format)
}

// NewPingCommand creates the ping command.
func NewPingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, cfg, err := connect(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.Ping(cmd.Context()); err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), rootOpts.Format, map[string]any{
				"status": "ok",
				"driver": cfg.DriverName(),
			}, "ok ("+cfg.DriverName()+")")
		},
	}
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	var wheres []string

	cmd := &cobra.Command{
		Use:   "count <table>",
		Short: "Count the rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := connect(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer conn.Close()

			b, err := applyWheres(conn.Table(args[0]), wheres)
			if err != nil {
				return err
			}
			n, err := b.CountContext(cmd.Context())
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), rootOpts.Format, map[string]any{
				"table": args[0],
				"count": n,
			}, strconv.FormatInt(n, 10))
		},
	}

	cmd.Flags().StringArrayVarP(&wheres, "where", "w", nil, "equality filter column=value (repeatable)")
	return cmd
}

// NewSQLCommand creates the sql command. It renders without connecting.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		wheres  []string
		columns []string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "sql <table>",
		Short: "Print the SELECT statement and bindings for a table without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := applyWheres(fluentdb.Table(args[0]).Select(columns...), wheres)
			if err != nil {
				return err
			}
			if limit > 0 {
				b.Limit(limit)
			}

			query, bindings, err := b.ToSQL()
			if err != nil {
				return err
			}

			values := make([]any, len(bindings))
			for i, bind := range bindings {
				values[i] = bind.Value
			}
			var sb strings.Builder
			sb.WriteString(query)
			for i, bind := range bindings {
				fmt.Fprintf(&sb, "\n  %d: %v (%s)", i+1, bind.Value, bind.Type)
			}
			return write(cmd.OutOrStdout(), rootOpts.Format, map[string]any{
				"sql":      query,
				"bindings": values,
			}, sb.String())
		},
	}

	cmd.Flags().StringArrayVarP(&wheres, "where", "w", nil, "equality filter column=value (repeatable)")
	cmd.Flags().StringSliceVarP(&columns, "select", "s", nil, "columns to select")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "row limit")
	return cmd
}

func connect(ctx context.Context, opts *RootOptions) (*fluentdb.Connector, *fluentdb.Config, error) {
	cfg, err := fluentdb.LoadConfig(opts.Config)
	if err != nil {
		return nil, nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var options []fluentdb.Option
	if opts.Debug {
		options = append(options, fluentdb.WithDebug(true))
	}
	conn, err := fluentdb.Open(ctx, cfg, options...)
	if err != nil {
		return nil, nil, err
	}
	return conn, cfg, nil
}

// applyWheres adds one equality predicate per column=value filter.
// Values that parse as integers are bound as integers.
func applyWheres(b *fluentdb.Builder, filters []string) (*fluentdb.Builder, error) {
	for _, f := range filters {
		column, raw, ok := strings.Cut(f, "=")
		if !ok || column == "" {
			return nil, fmt.Errorf("invalid filter %q: expected column=value", f)
		}
		var value any = raw
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			value = n
		}
		b.Where(column, "=", value)
	}
	return b, nil
}

func write(w io.Writer, format string, payload map[string]any, text string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		return enc.Encode(payload)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
