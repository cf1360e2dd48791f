// Command oaicore is a thin operator CLI over the core storage and query
// components (spec.md §4.7 notwithstanding: this is not a REST/RPC
// surface, per spec.md §1's Non-goals — just a local convenience tool),
// grounded on the teacher's cobra-based command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lareferencia/lareferencia-core-lib-sub002/config"
	"github.com/lareferencia/lareferencia-core-lib-sub002/log"
	"github.com/lareferencia/lareferencia-core-lib-sub002/metrics"
)

// compressionFlag adapts config.Compression to pflag.Value so --compression
// validates its argument against the three codecs config.go recognizes,
// rather than accepting any string.
type compressionFlag struct {
	value *config.Compression
}

func (f compressionFlag) String() string {
	if f.value == nil || *f.value == "" {
		return string(config.CompressionSnappy)
	}
	return string(*f.value)
}

func (f compressionFlag) Set(s string) error {
	switch config.Compression(s) {
	case config.CompressionSnappy, config.CompressionGzip, config.CompressionNone:
		*f.value = config.Compression(s)
		return nil
	default:
		return fmt.Errorf("invalid compression %q (want SNAPPY, GZIP, or NONE)", s)
	}
}

func (f compressionFlag) Type() string { return "compression" }

var _ pflag.Value = compressionFlag{}

// env bundles the shared state every subcommand needs, built once in
// PersistentPreRunE and threaded through via closures.
type env struct {
	fs      afero.Fs
	cfg     *config.Config
	metrics *metrics.Registry
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var compressionOverride config.Compression
	e := &env{}

	root := &cobra.Command{
		Use:           "oaicore",
		Short:         "Operator CLI for the OAI-PMH snapshot/catalog/validation core",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if compressionOverride != "" {
				cfg.Parquet.Compression = compressionOverride
			}
			e.fs = afero.NewOsFs()
			e.cfg = cfg
			e.metrics = metrics.Noop()
			log.Info("oaicore starting", "basepath", cfg.Store.BasePath, "backend", cfg.Store.Backend)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (defaults to built-in values)")
	root.PersistentFlags().Var(compressionFlag{&compressionOverride}, "compression", "override the configured Parquet compression codec (SNAPPY, GZIP, NONE)")

	root.AddCommand(newSnapshotCmd(e))
	root.AddCommand(newBlobCmd(e))
	root.AddCommand(newCatalogCmd(e))
	root.AddCommand(newValidateCmd(e))
	root.AddCommand(newQueryCmd(e))
	return root
}
