package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/keeldb/mdbx/pkg/mdbx"
)

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Read the value stored under KEY",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMap(true, func(t *mdbx.Txn, m *mdbx.Map) error {
			value, err := m.Get(t, []byte(args[0]))
			if err != nil {
				return errors.Wrap(err, "get")
			}
			if value == nil {
				return errors.Errorf("key %q not found", args[0])
			}
			_, err = os.Stdout.Write(append(value, '\n'))
			return err
		})
	},
}

var putCmd = &cobra.Command{
	Use:   "put KEY VALUE",
	Short: "Store VALUE under KEY",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := mdbx.PutUpsert
		if noOverwrite {
			flags |= mdbx.PutNoOverwrite
		}
		return withMap(false, func(t *mdbx.Txn, m *mdbx.Map) error {
			return errors.Wrap(m.Put(t, []byte(args[0]), []byte(args[1]), flags), "put")
		})
	},
}

var delCmd = &cobra.Command{
	Use:   "del KEY [VALUE]",
	Short: "Delete KEY, or one KEY/VALUE pair of a dupsort map",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value []byte
		if len(args) == 2 {
			value = []byte(args[1])
		}
		return withMap(false, func(t *mdbx.Txn, m *mdbx.Map) error {
			return errors.Wrap(m.Delete(t, []byte(args[0]), value), "delete")
		})
	},
}

var replaceCmd = &cobra.Command{
	Use:   "replace KEY VALUE",
	Short: "Store VALUE under KEY and print the previous value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMap(false, func(t *mdbx.Txn, m *mdbx.Map) error {
			old, err := m.Replace(t, []byte(args[0]), []byte(args[1]))
			if err != nil {
				return errors.Wrap(err, "replace")
			}
			if old != nil {
				fmt.Printf("%s\n", old)
			}
			return nil
		})
	},
}

var noOverwrite bool

func init() {
	putCmd.Flags().BoolVar(&noOverwrite, "no-overwrite", false, "Fail if the key already exists")
	rootCmd.AddCommand(getCmd, putCmd, delCmd, replaceCmd)
}
