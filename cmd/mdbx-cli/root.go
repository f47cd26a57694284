package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/keeldb/mdbx/pkg/log"
	"github.com/keeldb/mdbx/pkg/mdbx"
)

var (
	envPath  string
	mapName  string
	noSubdir bool
	maxMaps  uint64
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mdbx-cli",
	Short: "Inspect and modify an MDBX environment",
	Long: `mdbx-cli opens an MDBX environment and runs one operation against it:
read or write single keys, walk a map in key order, manage persistent
sequences, or copy the datafile.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLogLevel(logLevel)
		if err != nil {
			return errors.Wrap(err, "parse log level")
		}
		log.Init(log.Options{LogLevel: level, Type: log.ConsoleLogger})
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envPath, "path", ".", "Path of the environment to open")
	rootCmd.PersistentFlags().StringVar(&mapName, "map", "", "Named map to operate on. The default map is used when unset")
	rootCmd.PersistentFlags().BoolVar(&noSubdir, "no-subdir", false, "Treat --path as the datafile itself instead of a directory")
	rootCmd.PersistentFlags().Uint64Var(&maxMaps, "max-maps", 16, "How many named maps the environment may hold")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error")
}

// openEnv opens the environment named by the persistent flags.
func openEnv(readonly bool) (*mdbx.Env, error) {
	flags := mdbx.EnvDefaults
	if noSubdir {
		flags |= mdbx.EnvNoSubdir
	}
	if readonly {
		flags |= mdbx.EnvReadOnly
	}
	env, err := mdbx.Open(envPath,
		mdbx.WithFlags(flags),
		mdbx.WithMaxMaps(maxMaps),
		mdbx.WithLogger(log.Store),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "open environment at %s", envPath)
	}
	return env, nil
}

// withMap runs fn with the selected map inside one transaction and settles
// the transaction based on fn's outcome.
func withMap(readonly bool, fn func(t *mdbx.Txn, m *mdbx.Map) error) error {
	env, err := openEnv(readonly)
	if err != nil {
		return err
	}
	defer env.Close()

	flags := mdbx.TxnReadWrite
	if readonly {
		flags = mdbx.TxnReadOnly
	}
	t, err := env.Begin(flags)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	var m *mdbx.Map
	if readonly {
		m, err = t.OpenMap(mapName, mdbx.MapDefaults)
	} else {
		m, err = t.CreateMap(mapName, mdbx.MapDefaults)
	}
	if err != nil {
		_ = t.Abort()
		return errors.Wrapf(err, "open map %q", mapName)
	}
	if err := fn(t, m); err != nil {
		_ = t.Abort()
		return err
	}
	if readonly {
		return t.Abort()
	}
	return t.Commit()
}
