package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/keeldb/mdbx/pkg/mdbx"
)

var (
	lsStart string
	lsLimit uint64
	lsRows  bool
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Walk the map in key order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMap(true, func(t *mdbx.Txn, m *mdbx.Map) error {
			c, err := t.Cursor(m)
			if err != nil {
				return errors.Wrap(err, "open cursor")
			}
			defer c.Close()

			var start []byte
			if lsStart != "" {
				start = []byte(lsStart)
			}
			if lsRows {
				return listRows(c, start)
			}
			return listPairs(c, start)
		})
	},
}

func listPairs(c *mdbx.Cursor, start []byte) error {
	it, err := c.Iter(start, false, false)
	if err != nil {
		return err
	}
	defer it.Close()

	var n uint64
	for it.Next() {
		fmt.Printf("%s=%s\n", it.Key(), it.Value())
		n++
		if lsLimit > 0 && n >= lsLimit {
			break
		}
	}
	return errors.Wrap(it.Err(), "iterate")
}

func listRows(c *mdbx.Cursor, start []byte) error {
	rows, err := c.IterDupRows(start, false, false)
	if err != nil {
		return err
	}
	for rows.Next() {
		row, err := rows.Row()
		if err != nil {
			return errors.Wrap(err, "open row")
		}
		for row.Next() {
			fmt.Printf("%s=%s\n", row.Key(), row.Value())
		}
		err = row.Err()
		if cerr := row.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Wrap(err, "iterate row")
		}
	}
	return errors.Wrap(rows.Err(), "iterate rows")
}

func init() {
	lsCmd.Flags().StringVar(&lsStart, "start", "", "Start at the first key not less than this")
	lsCmd.Flags().Uint64Var(&lsLimit, "limit", 0, "Stop after this many pairs; 0 means all")
	lsCmd.Flags().BoolVar(&lsRows, "rows", false, "Group duplicate values row by row (dupsort maps)")
	rootCmd.AddCommand(lsCmd)
}
