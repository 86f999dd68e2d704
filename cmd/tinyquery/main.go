// Command tinyquery is a read-only query tool over SQLite-format
// database files: a database path followed by either a dot-command
// (.dbinfo, .tables) or a single SELECT statement.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"

	"github.com/joeandaverde/tinyquery/internal/pager"
	"github.com/joeandaverde/tinyquery/internal/query"
	"github.com/joeandaverde/tinyquery/internal/schema"
)

// cli mirrors spec.md §6's fixed positional arguments: a database path
// and a single command, either a dot-command or a SQL string. A
// subcommand-first framework like tinydb's own mitchellh/cli can't
// express this order, so the CLI is a flat kong struct instead.
type cli struct {
	Database string `arg:"" help:"Path to a SQLite-format database file."`
	Command  string `arg:"" help:"A dot-command (.dbinfo, .tables) or a SELECT statement."`
}

func main() {
	var args cli
	kong.Parse(&args,
		kong.Name("tinyquery"),
		kong.Description("Read-only query engine over SQLite-format database files."))

	log := logrus.New()
	log.SetOutput(colorable.NewColorableStderr())
	entry := log.WithField("query_id", uuid.New().String())

	if err := run(args, os.Stdout, entry); err != nil {
		entry.WithError(err).Error("query failed")
		os.Exit(1)
	}
}

func run(args cli, out io.Writer, log *logrus.Entry) error {
	p, err := pager.Open(args.Database, log.Logger)
	if err != nil {
		return err
	}
	defer p.Close()

	switch args.Command {
	case ".dbinfo":
		return dbInfo(p, out, log.Logger)
	case ".tables":
		return tables(p, out, log.Logger)
	default:
		idx, err := schema.Read(p, log.Logger)
		if err != nil {
			return err
		}
		return query.Run(p, idx, args.Command, out, log.Logger)
	}
}

func dbInfo(p *pager.Pager, out io.Writer, log *logrus.Logger) error {
	idx, err := schema.Read(p, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "database page size: %d\n", p.PageSize())
	fmt.Fprintf(out, "number of tables: %d\n", idx.Count())
	return nil
}

func tables(p *pager.Pager, out io.Writer, log *logrus.Logger) error {
	idx, err := schema.Read(p, log)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(idx.Tables()))
	for _, t := range idx.Tables() {
		names = append(names, t.TblName)
	}
	fmt.Fprintln(out, strings.Join(names, " "))
	return nil
}
