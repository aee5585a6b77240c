// Command flota plays Flota matches against a running server through the
// legacy /servicios/partidas resource.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/flota/client"
	"github.com/wricardo/mcp-training/flota/game/engine"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "flota",
		Usage:  "play Flota matches against a server",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "server base URL",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("FLOTA_SERVER"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "create a match and print its id",
				ArgsUsage: "ROWS COLUMNS SHIPS",
				Action:    runNew,
			},
			{
				Name:      "delete",
				Usage:     "end a match",
				ArgsUsage: "MATCH",
				Action:    runDelete,
			},
			{
				Name:      "probe",
				Usage:     "probe a cell and print the result code",
				ArgsUsage: "MATCH ROW COLUMN",
				Action:    runProbe,
			},
			{
				Name:      "ship",
				Usage:     "print one ship as row#column#orientation#length",
				ArgsUsage: "MATCH SHIP",
				Action:    runShip,
			},
			{
				Name:      "solution",
				Usage:     "print every ship of a match",
				ArgsUsage: "MATCH",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "board", Usage: "also draw the fleet on a ROWSxCOLUMNS board, e.g. 10x10"},
				},
				Action: runSolution,
			},
			{
				Name:      "play",
				Usage:     "create a match and sink it with the hunt/target strategy",
				ArgsUsage: "ROWS COLUMNS SHIPS",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "keep", Usage: "keep the match on the server afterwards"},
					&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print every probe"},
				},
				Action: runPlay,
			},
		},
	}
}

func newClient(cmd *cli.Command) *client.Client {
	return client.New(cmd.String("server"))
}

// intArgs parses exactly len(names) positional integer arguments
func intArgs(cmd *cli.Command, names ...string) ([]int, error) {
	if cmd.Args().Len() != len(names) {
		return nil, fmt.Errorf("%s: expected %s", cmd.Name, strings.Join(names, " "))
	}
	values := make([]int, len(names))
	for i, name := range names {
		n, err := strconv.Atoi(cmd.Args().Get(i))
		if err != nil {
			return nil, fmt.Errorf("%s: %s must be an integer, got %q", cmd.Name, name, cmd.Args().Get(i))
		}
		values[i] = n
	}
	return values, nil
}

func runNew(ctx context.Context, cmd *cli.Command) error {
	args, err := intArgs(cmd, "ROWS", "COLUMNS", "SHIPS")
	if err != nil {
		return err
	}

	id, err := newClient(cmd).CreateMatch(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, id)
	return nil
}

func runDelete(ctx context.Context, cmd *cli.Command) error {
	args, err := intArgs(cmd, "MATCH")
	if err != nil {
		return err
	}
	return newClient(cmd).DeleteMatch(ctx, args[0])
}

func runProbe(ctx context.Context, cmd *cli.Command) error {
	args, err := intArgs(cmd, "MATCH", "ROW", "COLUMN")
	if err != nil {
		return err
	}

	code, err := newClient(cmd).Probe(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}

	outcome := engine.OutcomeFromCode(code)
	if outcome.Result == engine.NewlySunk {
		fmt.Fprintf(cmd.Root().Writer, "%d %s ship=%d\n", code, outcome.Result, outcome.ShipID)
	} else {
		fmt.Fprintf(cmd.Root().Writer, "%d %s\n", code, outcome.Result)
	}
	return nil
}

func runShip(ctx context.Context, cmd *cli.Command) error {
	args, err := intArgs(cmd, "MATCH", "SHIP")
	if err != nil {
		return err
	}

	ship, err := newClient(cmd).GetShip(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, ship)
	return nil
}

func runSolution(ctx context.Context, cmd *cli.Command) error {
	args, err := intArgs(cmd, "MATCH")
	if err != nil {
		return err
	}

	var rows, columns int
	if board := cmd.String("board"); board != "" {
		if _, err := fmt.Sscanf(board, "%dx%d", &rows, &columns); err != nil || rows < 1 || columns < 1 {
			return fmt.Errorf("solution: --board must look like 10x10, got %q", board)
		}
	}

	fleet, err := newClient(cmd).GetSolution(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	for i, ship := range fleet {
		fmt.Fprintf(out, "%d %s\n", i, ship)
	}
	if rows > 0 {
		match, err := engine.NewMatchFromDescriptors(rows, columns, fleet)
		if err != nil {
			return fmt.Errorf("solution: fleet does not fit %dx%d: %w", rows, columns, err)
		}
		fmt.Fprintln(out)
		for _, line := range match.Render(true) {
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	args, err := intArgs(cmd, "ROWS", "COLUMNS", "SHIPS")
	if err != nil {
		return err
	}
	rows, columns, ships := args[0], args[1], args[2]

	c := newClient(cmd)
	id, err := c.CreateMatch(ctx, rows, columns, ships)
	if err != nil {
		return err
	}
	if !cmd.Bool("keep") {
		defer c.DeleteMatch(context.WithoutCancel(ctx), id)
	}

	out := cmd.Root().Writer
	var observe func(engine.Position, engine.Outcome)
	if cmd.Bool("verbose") {
		observe = func(p engine.Position, o engine.Outcome) {
			fmt.Fprintf(out, "(%d,%d) %s\n", p.Row, p.Column, o.Result)
		}
	}

	report, err := client.Play(ctx, c, id, client.NewHunter(rows, columns, ships), observe)
	if err != nil {
		return fmt.Errorf("match %d: %w", id, err)
	}

	fmt.Fprintf(out, "match %d: %d ships sunk in %d probes (%d hits, %d misses)\n",
		id, report.Sunk, report.Probes, report.Hits, report.Misses)
	return nil
}
