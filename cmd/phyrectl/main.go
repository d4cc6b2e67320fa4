package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/phyrestorm/internal/version"
	phyrestorm "github.com/kailas-cloud/phyrestorm/pkg/sdk"
)

const (
	defaultPageSize = 100
	defaultTimeout  = 30 * time.Second
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		slog.Error("phyrectl failed", "error", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "phyrectl",
		Usage:   "Read ranked alignment results from a phyrestorm database",
		Version: version.String(),
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "sqlite",
				Usage:   "SQLite database file",
				EnvVars: []string{"PHYRESTORM_SQLITE"},
			},
			&cli.StringFlag{
				Name:    "postgres",
				Usage:   "PostgreSQL connection URL",
				EnvVars: []string{"PHYRESTORM_POSTGRES"},
			},
			&cli.StringSliceFlag{
				Name:  "substitute",
				Usage: "Aux path rewrite in pattern=replacement format; repeatable, applied in order",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for the whole command",
				Value: defaultTimeout,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log every SDK operation to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "page",
				Usage: "Print one page of hits as JSON",
				Flags: []cli.Flag{
					jobFlag(),
					&cli.Int64Flag{Name: "after", Usage: "Structure ID of the last hit already seen"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum number of hits",
						DefaultText: "100"},
				},
				Action: pageAction,
			},
			{
				Name:  "walk",
				Usage: "Print every hit of a job in ranking order, one JSON object per line",
				Flags: []cli.Flag{
					jobFlag(),
					&cli.IntFlag{Name: "page-size", Usage: "Hits fetched per query", Value: defaultPageSize},
				},
				Action: walkAction,
			},
			{
				Name:   "count",
				Usage:  "Print the number of hits of a job",
				Flags:  []cli.Flag{jobFlag()},
				Action: countAction,
			},
			{
				Name:   "migrate",
				Usage:  "Create or upgrade the results schema",
				Action: migrateAction,
			},
		},
	}
}

func jobFlag() cli.Flag {
	return &cli.StringFlag{Name: "job", Aliases: []string{"j"}, Usage: "Job ID", Required: true}
}

// hitJSON is the output form of a hit, matching the HTTP API.
type hitJSON struct {
	Name           string  `json:"name"`
	StructureID    int64   `json:"structure_id"`
	PrimaryScore   float64 `json:"primary_score"`
	SecondaryScore float64 `json:"secondary_score"`
	AuxPath        *string `json:"aux_path"`
	ClusterIndex   int     `json:"cluster_index"`
	ChildIndex     int     `json:"child_index"`
}

type pageJSON struct {
	Items      []hitJSON `json:"items"`
	TotalCount int       `json:"total_count"`
	NextAfter  *int64    `json:"next_after,omitempty"`
}

func toJSON(h phyrestorm.Hit) hitJSON {
	return hitJSON{
		Name:           h.Name,
		StructureID:    h.StructureID,
		PrimaryScore:   h.PrimaryScore,
		SecondaryScore: h.SecondaryScore,
		AuxPath:        h.AuxPath,
		ClusterIndex:   h.ClusterIndex,
		ChildIndex:     h.ChildIndex,
	}
}

func pageAction(c *cli.Context) error {
	return withClient(c, false, func(ctx context.Context, client *phyrestorm.Client) error {
		var after *int64
		if c.IsSet("after") {
			after = phyrestorm.After(c.Int64("after"))
		}
		var limit *int
		if c.IsSet("limit") {
			limit = phyrestorm.Limit(c.Int("limit"))
		}

		p, err := client.Results(c.String("job")).Page(ctx, after, limit)
		if err != nil {
			return withHints(err)
		}

		out := pageJSON{Items: make([]hitJSON, len(p.Hits)), TotalCount: p.TotalCount, NextAfter: p.NextAfter()}
		for i, h := range p.Hits {
			out.Items[i] = toJSON(h)
		}
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(out), "write page")
	})
}

func walkAction(c *cli.Context) error {
	return withClient(c, false, func(ctx context.Context, client *phyrestorm.Client) error {
		enc := json.NewEncoder(c.App.Writer)
		err := client.Results(c.String("job")).Walk(ctx, c.Int("page-size"), func(h phyrestorm.Hit) error {
			return errors.Wrap(enc.Encode(toJSON(h)), "write hit")
		})
		return withHints(err)
	})
}

func countAction(c *cli.Context) error {
	return withClient(c, false, func(ctx context.Context, client *phyrestorm.Client) error {
		n, err := client.Results(c.String("job")).Count(ctx)
		if err != nil {
			return withHints(err)
		}
		_, err = fmt.Fprintln(c.App.Writer, n)
		return errors.Wrap(err, "write count")
	})
}

func migrateAction(c *cli.Context) error {
	return withClient(c, true, func(context.Context, *phyrestorm.Client) error {
		_, err := fmt.Fprintln(c.App.Writer, "schema up to date")
		return errors.Wrap(err, "write status")
	})
}

// withClient opens the configured database for the duration of fn.
func withClient(c *cli.Context, migrate bool, fn func(context.Context, *phyrestorm.Client) error) error {
	opts, err := clientOptions(c)
	if err != nil {
		return err
	}
	if migrate {
		opts = append(opts, phyrestorm.WithMigrations())
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	client, err := phyrestorm.New(ctx, opts...)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer client.Close()

	return fn(ctx, client)
}

func clientOptions(c *cli.Context) ([]phyrestorm.Option, error) {
	var opts []phyrestorm.Option
	switch sqlitePath, pgURL := c.String("sqlite"), c.String("postgres"); {
	case sqlitePath != "" && pgURL != "":
		return nil, errors.New("--sqlite and --postgres are mutually exclusive")
	case sqlitePath != "":
		opts = append(opts, phyrestorm.WithSQLite(sqlitePath))
	case pgURL != "":
		opts = append(opts, phyrestorm.WithPostgres(pgURL))
	default:
		return nil, errors.WithHint(errors.New("no database given"),
			"pass --sqlite <file> or --postgres <url>, or set PHYRESTORM_SQLITE")
	}

	for _, s := range c.StringSlice("substitute") {
		pattern, replacement, ok := cutSubstitution(s)
		if !ok {
			return nil, errors.Newf("invalid substitution %q, want pattern=replacement", s)
		}
		opts = append(opts, phyrestorm.WithPathSubstitution(pattern, replacement))
	}

	if c.Bool("verbose") {
		opts = append(opts, phyrestorm.WithLogger(slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)))
	}
	return opts, nil
}

// cutSubstitution splits on the last "=" so patterns may contain "=".
func cutSubstitution(s string) (pattern, replacement string, ok bool) {
	i := strings.LastIndex(s, "=")
	if i <= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// withHints attaches operator guidance to well-known failures.
func withHints(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, phyrestorm.ErrCursorNotFound):
		return errors.WithHint(err, "the --after structure is not a hit of this job; start again without --after")
	case errors.Is(err, phyrestorm.ErrInvalidArgument):
		return errors.WithHint(err, "page sizes must be at least 0 and below the maximum page size")
	case errors.Is(err, phyrestorm.ErrTimeout):
		return errors.WithHint(err, "raise --timeout")
	default:
		return err
	}
}
