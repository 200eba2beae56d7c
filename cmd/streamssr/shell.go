package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamssr/streamssr/internal/assets"
	"github.com/streamssr/streamssr/internal/errors"
	"github.com/streamssr/streamssr/internal/shell"
)

func generateShellCmd() *cobra.Command {
	var (
		out     string
		pretty  bool
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "generate-shell",
		Short: "Write the static shell",
		Long: `Render the static shell (header, hero skeleton, section skeletons,
footer, critical CSS) and write it to <dist>/static/shell.html.

The server prefers this file for /shell.html and for the fallback page
served when a request fails before streaming starts.

Examples:
  streamssr generate-shell
  streamssr generate-shell --out=public/shell.html --pretty
  STREAMSSR_ASSETS_BUCKET=my-bucket streamssr generate-shell --publish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.ShellPath()
			}

			html, err := shell.Build(shell.Options{Pretty: pretty})
			if err != nil {
				return err
			}
			if err := shell.WriteFile(out, html); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			success(w, "Static shell generated: %s", out)
			info(w, "Size: %.2f KB", float64(len(html))/1024)

			if !publish {
				return nil
			}
			if cfg.Assets.Bucket == "" {
				return errors.New("E202").
					WithDetail("--publish needs a bucket").
					WithSuggestion("Set STREAMSSR_ASSETS_BUCKET")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			key := cfg.Assets.KeyPrefix + "static/shell.html"
			client := assets.NewS3Client(cfg.Assets.Region)
			if err := shell.Publish(ctx, client, cfg.Assets.Bucket, key, html); err != nil {
				return err
			}
			success(w, "Published to s3://%s/%s", cfg.Assets.Bucket, key)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default <dist>/static/shell.html)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the output")
	cmd.Flags().BoolVar(&publish, "publish", false, "Also upload the shell to the assets bucket")
	return cmd
}
