package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/git-pkgs/alpmdb/fetch"
	"github.com/git-pkgs/alpmdb/internal/output"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [flags] <repo>...",
	Short: "Download repository databases from mirrors",
	Long: `Download the sync database of each repository, trying the mirrors of a
pacman mirrorlist in order. Databases that have not changed since the last
download are left in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("mirrorlist", "/etc/pacman.d/mirrorlist", "pacman mirrorlist to read servers from")
	fetchCmd.Flags().StringSlice("server", nil, "mirror server URL with $repo/$arch placeholders (overrides the mirrorlist)")
	fetchCmd.Flags().String("arch", "x86_64", "architecture to fetch")
	fetchCmd.Flags().String("dest", ".", "directory to write databases to")
	fetchCmd.Flags().Int("retries", 3, "retries per mirror on 429 and 5xx responses")
	fetchCmd.Flags().Int("jobs", 4, "repositories to download in parallel")
}

func runFetch(cmd *cobra.Command, repos []string) error {
	mirrorlist, err := stringFlag(cmd, "mirrorlist", cfg.Mirror.Mirrorlist)
	if err != nil {
		return err
	}
	servers, err := cmd.Flags().GetStringSlice("server")
	if err != nil {
		return err
	}
	arch, err := stringFlag(cmd, "arch", cfg.Defaults.Arch)
	if err != nil {
		return err
	}
	dest, err := cmd.Flags().GetString("dest")
	if err != nil {
		return err
	}
	retries, err := cmd.Flags().GetInt("retries")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("retries") && cfg.Mirror.MaxRetries > 0 {
		retries = cfg.Mirror.MaxRetries
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}

	if len(servers) == 0 {
		servers = cfg.Mirror.Servers
	}
	var resolver *fetch.Resolver
	if len(servers) > 0 {
		resolver = fetch.NewResolver(servers, arch)
	} else {
		if resolver, err = fetch.LoadMirrorlist(mirrorlist, arch); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	f := fetch.NewCircuitBreakerFetcher(fetch.NewFetcher(
		fetch.WithMaxRetries(retries),
		fetch.WithUserAgent("alpmdb/"+version),
	))

	var mu sync.Mutex
	out := cmd.OutOrStdout()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for _, repo := range repos {
		g.Go(func() error {
			res, err := resolver.DownloadFile(ctx, f, repo, filepath.Join(dest, repo+".db"))
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			reportDownload(out, repo, res)
			return nil
		})
	}
	return g.Wait()
}

func reportDownload(out io.Writer, repo string, res *fetch.Result) {
	if res.NotModified {
		fmt.Fprintf(out, "%s is up to date\n", repo)
		return
	}
	size := "unknown size"
	if n, err := safecast.Conv[uint64](res.Size); err == nil {
		size = output.HumanSize(n)
	}
	fmt.Fprintf(out, "%s downloaded (%s) from %s\n", repo, size, res.URL)
}
