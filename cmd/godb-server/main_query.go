package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"goDBDriver/driver"
)

type cmdQuery struct {
	global *cmdGlobal

	flagURL string
	flagSet []string
}

// Command generates the command definition.
func (c *cmdQuery) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "query <statement>..."
	cmd.Short = "Run statements through the driver"
	cmd.Long = `Description:
  Run statements through the driver

  Statements run in order on one session. Result sets are rendered as
  tables; other statements print their update count. Without --url the
  statements run against an embedded engine.
`
	cmd.Example = `  godb-server query "CREATE TABLE t (a INT)" "INSERT INTO t VALUES (1)" "SELECT * FROM t"
  godb-server query --url godb://localhost:10000/default --set godb.fetch.size=500 "SELECT * FROM t"`
	cmd.RunE = c.Run
	cmd.Flags().StringVarP(&c.flagURL, "url", "u", driver.URLPrefix, "Connection URL")
	cmd.Flags().StringArrayVar(&c.flagSet, "set", nil, "Session option as key=value (repeatable)")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdQuery) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 1, -1)
	if exit {
		return err
	}

	conf, _, err := c.global.loadConfig()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		return err
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(level)

	opts := []driver.ConnectOption{driver.WithLogger(log)}
	for _, kv := range c.flagSet {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return errors.Newf("Invalid session option %q, expected key=value", kv)
		}
		opts = append(opts, driver.WithSessionOption(key, value))
	}

	ctx := cmd.Context()
	sess, err := driver.Connect(ctx, c.flagURL, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	stmt, err := sess.Statement()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, query := range args {
		hasResultSet, err := stmt.Execute(ctx, query)
		if err != nil {
			return errors.Wrapf(err, "%s (SQLSTATE %s)", query, driver.SQLStateOf(err))
		}

		for w, _ := stmt.Warnings(); w != nil; w = w.Next {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}

		if !hasResultSet {
			count, err := stmt.UpdateCount()
			if err != nil {
				return err
			}
			if count >= 0 {
				fmt.Fprintf(out, "%d rows affected\n", count)
			}
			continue
		}

		rs, err := stmt.ResultSet()
		if err != nil {
			return err
		}
		err = renderResultSet(out, rs)
		if err != nil {
			return err
		}
	}

	return nil
}

// renderResultSet drains rs into a table.
func renderResultSet(w io.Writer, rs *driver.ResultSet) error {
	meta, err := rs.MetaData()
	if err != nil {
		return err
	}

	header := make([]string, meta.ColumnCount())
	for i := range header {
		header[i], err = meta.ColumnLabel(i + 1)
		if err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(header)

	for {
		ok, err := rs.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		data := make([]string, len(header))
		for i := range data {
			v, err := rs.String(i + 1)
			if err != nil {
				return err
			}
			isNull, err := rs.WasNull()
			if err != nil {
				return err
			}
			if isNull {
				v = "NULL"
			}
			data[i] = v
		}
		table.Append(data)
	}

	table.Render()
	return nil
}
