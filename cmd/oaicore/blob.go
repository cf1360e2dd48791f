package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lareferencia/lareferencia-core-lib-sub002/blobstore"
)

func newBlobCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "blob", Short: "Put, get, and compact blob-store content"}
	cmd.AddCommand(newBlobPutCmd(e))
	cmd.AddCommand(newBlobGetCmd(e))
	cmd.AddCommand(newBlobGCCmd(e))
	return cmd
}

func openBlobStore(e *env, acronym string) (blobstore.Store, error) {
	mgr := blobstore.NewManager(e.fs, e.cfg, blobstore.Options{Metrics: e.metrics})
	return mgr.For(blobstore.Network{Acronym: acronym})
}

func newBlobPutCmd(e *env) *cobra.Command {
	var acronym, file string

	cmd := &cobra.Command{
		Use:   "put",
		Short: "Write a file's content into the network's blob store, printing its fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			store, err := openBlobStore(e, acronym)
			if err != nil {
				return err
			}
			defer store.Close()

			fingerprint, err := store.Put(context.Background(), content)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fingerprint)
			return nil
		},
	}
	cmd.Flags().StringVar(&acronym, "acronym", "", "network acronym")
	cmd.Flags().StringVar(&file, "file", "", "path to the file to store")
	cmd.MarkFlagRequired("acronym")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newBlobGetCmd(e *env) *cobra.Command {
	var acronym, fingerprint, out string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Read a fingerprint's content from the network's blob store",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBlobStore(e, acronym)
			if err != nil {
				return err
			}
			defer store.Close()

			content, err := store.Get(context.Background(), fingerprint)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}
			return os.WriteFile(out, content, 0o644)
		},
	}
	cmd.Flags().StringVar(&acronym, "acronym", "", "network acronym")
	cmd.Flags().StringVar(&fingerprint, "fingerprint", "", "content fingerprint")
	cmd.Flags().StringVar(&out, "out", "", "path to write content to (default: stdout)")
	cmd.MarkFlagRequired("acronym")
	cmd.MarkFlagRequired("fingerprint")
	return cmd
}

func newBlobGCCmd(e *env) *cobra.Command {
	var acronym string

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Run the network's blob store compaction pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBlobStore(e, acronym)
			if err != nil {
				return err
			}
			defer store.Close()

			ok, err := store.CleanAndOptimize(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "compaction ran, success=%v\n", ok)
			return nil
		},
	}
	cmd.Flags().StringVar(&acronym, "acronym", "", "network acronym")
	cmd.MarkFlagRequired("acronym")
	return cmd
}
