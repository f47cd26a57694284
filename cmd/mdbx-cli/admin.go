package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/keeldb/mdbx/pkg/log"
	"github.com/keeldb/mdbx/pkg/mdbx"
)

var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Print statistics for the environment and the selected map",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(true)
		if err != nil {
			return err
		}
		defer env.Close()

		info, err := env.Info()
		if err != nil {
			return errors.Wrap(err, "environment info")
		}
		fmt.Printf("map size: %d\nrecent txn: %d\nreaders: %d/%d\npage size: %d\n",
			info.MapSize, info.RecentTxnID, info.NumReaders, info.MaxReaders, info.PageSize)

		return env.View(func(t *mdbx.Txn) error {
			m, err := t.OpenMap(mapName, mdbx.MapDefaults)
			if err != nil {
				return errors.Wrapf(err, "open map %q", mapName)
			}
			st, err := m.Stat(t)
			if err != nil {
				return errors.Wrap(err, "map stat")
			}
			fmt.Printf("entries: %d\ndepth: %d\nleaf pages: %d\n",
				st.Entries, st.Depth, st.LeafPages)
			return nil
		})
	},
}

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "List the named maps of the environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(true)
		if err != nil {
			return err
		}
		defer env.Close()

		names, err := env.MapNames()
		if err != nil {
			return errors.Wrap(err, "list maps")
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var seqIncrement uint64

var seqCmd = &cobra.Command{
	Use:   "seq",
	Short: "Read the map's persistent sequence, optionally advancing it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMap(seqIncrement == 0, func(t *mdbx.Txn, m *mdbx.Map) error {
			prev, err := m.Sequence(t, seqIncrement)
			if err != nil {
				return errors.Wrap(err, "sequence")
			}
			fmt.Println(prev)
			return nil
		})
	},
}

var dropDelete bool

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Empty the selected map",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMap(false, func(t *mdbx.Txn, m *mdbx.Map) error {
			return errors.Wrap(m.Drop(t, dropDelete), "drop")
		})
	},
}

var copyCompact bool

var copyCmd = &cobra.Command{
	Use:   "copy DEST",
	Short: "Write a consistent copy of the environment to DEST",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(true)
		if err != nil {
			return err
		}
		defer env.Close()

		flags := mdbx.CopyDefaults
		if copyCompact {
			flags |= mdbx.CopyCompact
		}
		if err := env.CopyTo(args[0], flags); err != nil {
			return errors.Wrap(err, "copy")
		}
		log.CLI.Info().Str("dest", args[0]).Bool("compact", copyCompact).Msg("environment copied")
		return nil
	},
}

func init() {
	seqCmd.Flags().Uint64Var(&seqIncrement, "increment", 0, "Advance the sequence by this much; 0 only reads it")
	dropCmd.Flags().BoolVar(&dropDelete, "delete", false, "Also delete the map itself")
	copyCmd.Flags().BoolVar(&copyCompact, "compact", false, "Compact while copying")
	rootCmd.AddCommand(statCmd, mapsCmd, seqCmd, dropCmd, copyCmd)
}
