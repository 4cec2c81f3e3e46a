package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wikigraph/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the link cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached link lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig("")
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != cache.BackendFile {
				printWarning("The %s backend is shared; entries expire after %s", cfg.Cache.Backend, cfg.Cache.TTL.Std())
				return nil
			}

			dir, err := c.fileCacheDir(cfg.Cache.Dir)
			if err != nil {
				return err
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			n, err := fc.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig("")
			if err != nil {
				return err
			}
			dir, err := c.fileCacheDir(cfg.Cache.Dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// fileCacheDir returns the configured directory, or the XDG default.
func (c *CLI) fileCacheDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
