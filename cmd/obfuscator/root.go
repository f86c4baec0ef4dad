package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veilkit/obfuscator"
	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/engine"
	"github.com/veilkit/obfuscator/store/fsstore"
	"github.com/veilkit/obfuscator/store/redisstore"
)

const version = "0.1.0-dev"

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	store      string
	prefix     string
	outputRoot string
	verbose    bool
	jsonLogs   bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "obfuscator",
		Short:         "Obfuscate rigged characters and the assets they reference",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.store, "store", "Assets", "asset store: a directory, or a redis:// URL")
	flags.StringVar(&g.prefix, "prefix", redisstore.DefaultPrefix, "key prefix when the store is Redis")
	flags.StringVar(&g.outputRoot, "output-root", engine.DefaultOutputRoot, "container that receives run folders")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "log debug output")
	flags.BoolVar(&g.jsonLogs, "json", false, "log as JSON")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newRunCmd(g))
	root.AddCommand(newParamsCmd(g))
	root.AddCommand(newClearCmd(g))
	root.AddCommand(newCheckCmd(g))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "obfuscator "+version)
		},
	}
}

func (g *globals) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if g.jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// session is an open store with an Obfuscator on top of it.
type session struct {
	store   asset.Store
	obf     *obfuscator.Obfuscator
	release func()
}

func (g *globals) open(cmd *cobra.Command, opts ...obfuscator.Option) (*session, error) {
	logger := g.logger(cmd.ErrOrStderr())

	var (
		store   asset.Store
		release func()
	)
	if strings.HasPrefix(g.store, "redis://") || strings.HasPrefix(g.store, "rediss://") {
		rs, err := redisstore.New(redisstore.Options{URL: g.store, Prefix: g.prefix})
		if err != nil {
			return nil, err
		}
		store = rs
		release = func() { obfuscator.CloseWithLog(rs, logger, "redis store") }
	} else {
		fs, err := fsstore.Open(g.store)
		if err != nil {
			return nil, err
		}
		store = fs
		release = fs.Close
	}

	opts = append([]obfuscator.Option{
		obfuscator.WithLogger(logger),
		obfuscator.WithOutputRoot(g.outputRoot),
	}, opts...)
	obf, err := obfuscator.New(store, opts...)
	if err != nil {
		release()
		return nil, err
	}
	return &session{store: store, obf: obf, release: release}, nil
}
