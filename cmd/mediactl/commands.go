package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"recipes-backend/internal/bootstrap"
	"recipes-backend/internal/media"
	"recipes-backend/internal/shared/config"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "mediactl",
		Short:         "Operate the media upload pipeline from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newPutCommand(), newPolicyCommand())
	return root
}

func newPutCommand() *cobra.Command {
	var folder, field string
	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Upload a local file through the configured backend and print its reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			backend, err := bootstrap.BuildBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			uploader := media.NewUploader(backend, nil)
			ref, err := uploader.Upload(cmd.Context(), media.UploadRequest{
				OriginalName:      filepath.Base(path),
				FieldName:         field,
				MimeType:          mimetype.Detect(data).String(),
				SizeBytes:         int64(len(data)),
				Content:           data,
				DestinationFolder: folder,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ref)
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "recipes", "destination folder")
	cmd.Flags().StringVar(&field, "field", "picture", "field name recorded in the object key")
	return cmd
}

func newPolicyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Print the effective validation policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			policy := bootstrap.Policy(cfg)
			out := cmd.OutOrStdout()

			enforced := "yes"
			if cfg.ObjectStoreType == config.StoreLocal && !cfg.LocalEnforcePolicy {
				enforced = "presence only"
			}
			fmt.Fprintf(out, "backend:    %s\n", cfg.ObjectStoreType)
			fmt.Fprintf(out, "extensions: %s\n", strings.Join(policy.AllowedExtensions, ", "))
			fmt.Fprintf(out, "max size:   %s (%d bytes)\n", humanize.IBytes(uint64(policy.MaxSizeBytes)), policy.MaxSizeBytes)
			fmt.Fprintf(out, "timeout:    %s\n", cfg.UploadTimeout)
			fmt.Fprintf(out, "enforced:   %s\n", enforced)
			return nil
		},
	}
}
