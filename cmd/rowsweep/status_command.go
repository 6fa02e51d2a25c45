package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"rowsweep/internal/cleanup"
	"rowsweep/internal/delqueue"
	"rowsweep/internal/recentedits"
)

const (
	ansiBlue  = "\x1b[34m"
	ansiReset = "\x1b[0m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the deletion queue, active cycle, and edit tracker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *jobEnv) error {
				runCtx := cmd.Context()
				out := cmd.OutOrStdout()

				queued, err := delqueue.New(env.states).Read(runCtx)
				if err != nil {
					return err
				}
				edits, err := recentedits.New(env.states).Size(runCtx)
				if err != nil {
					return err
				}
				state, err := cleanup.Load(runCtx, env.states)
				if err != nil {
					return err
				}

				for _, line := range headline("rowsweep status", shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}

				rows := [][]string{
					{"Deletion queue", strconv.Itoa(len(queued))},
					{"Tracked recent edits", strconv.Itoa(edits)},
					{"Active cleanup cycle", yesNo(state != nil)},
				}
				if state != nil {
					rows = append(rows,
						[]string{"Cycle ID", state.CycleID},
						[]string{"Passes run", strconv.Itoa(state.Passes)},
						[]string{"Deleted so far", strconv.Itoa(len(state.Deleted))},
						[]string{"Remaining", strconv.Itoa(len(state.Remaining))},
						[]string{"Cycle age", formatAge(state.StartedAt, time.Now().UTC())},
					)
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Item", "Value"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func headline(line string, colorize bool) []string {
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
