package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arafatkatze/cline/internal/bootstrap"
	"github.com/arafatkatze/cline/internal/core"
)

const keyInfoAPIKeyEnv = "OPENROUTER_API_KEY"

type keyInfoOptions struct {
	Key     string
	BaseURL string
	JSON    bool
}

type clearKeyInfoOptions struct {
	Key     string
	BaseURL string
	All     bool
	Yes     bool
}

func parseKeyInfoFlags(args []string) (keyInfoOptions, error) {
	fs := flag.NewFlagSet("key-info", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts keyInfoOptions
	fs.StringVar(&opts.Key, "key", "", "OpenRouter API key (defaults to $"+keyInfoAPIKeyEnv+")")
	fs.StringVar(&opts.BaseURL, "base-url", "", "OpenRouter API base URL (defaults to config)")
	fs.BoolVar(&opts.JSON, "json", false, "Print the lookup result as JSON")

	if err := fs.Parse(args); err != nil {
		return keyInfoOptions{}, err
	}
	opts.Key = strings.TrimSpace(opts.Key)
	if opts.Key == "" {
		opts.Key = strings.TrimSpace(os.Getenv(keyInfoAPIKeyEnv))
	}
	opts.BaseURL = strings.TrimSpace(opts.BaseURL)
	return opts, nil
}

func parseClearKeyInfoFlags(args []string) (clearKeyInfoOptions, error) {
	fs := flag.NewFlagSet("clear-key-info-cache", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts clearKeyInfoOptions
	fs.StringVar(&opts.Key, "key", "", "OpenRouter API key whose entry to clear (required unless --all)")
	fs.StringVar(&opts.BaseURL, "base-url", "", "Base URL the entry was looked up with")
	fs.BoolVar(&opts.All, "all", false, "Clear every cached key info entry")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return clearKeyInfoOptions{}, err
	}
	opts.Key = strings.TrimSpace(opts.Key)
	opts.BaseURL = strings.TrimSpace(opts.BaseURL)

	switch {
	case opts.All && opts.Key != "":
		return clearKeyInfoOptions{}, errors.New("--all cannot be combined with --key")
	case !opts.All && opts.Key == "":
		return clearKeyInfoOptions{}, errors.New("--key is required unless --all is set")
	}
	return opts, nil
}

// adminServices builds the service container, connecting Redis only when the
// key info cache is configured to use it.
func adminServices(cmdCtx *commandContext) (bootstrap.ServiceContainer, func(), error) {
	var client redis.UniversalClient
	if cmdCtx.Config.UsesRedis() {
		c, err := bootstrap.ConnectRedis(cmdCtx.Ctx, bootstrap.RedisConnectConfig{
			Redis:  cmdCtx.Config.Redis,
			Logger: cmdCtx.Logger,
		})
		if err != nil {
			return bootstrap.ServiceContainer{}, nil, fmt.Errorf("connect redis: %w", err)
		}
		client = c
	}

	svcs, err := bootstrap.NewServices(cmdCtx.Ctx, &bootstrap.ServiceDeps{
		Config:      &cmdCtx.Config,
		RedisClient: client,
		Logger:      cmdCtx.Logger,
	})
	closeFn := func() {
		if client != nil {
			if cerr := client.Close(); cerr != nil {
				cmdCtx.Logger.Warn("redis close failed", "error", cerr)
			}
		}
	}
	if err != nil {
		closeFn()
		return bootstrap.ServiceContainer{}, nil, err
	}
	return svcs, closeFn, nil
}

func runKeyInfo(cmdCtx *commandContext, args []string) error {
	opts, err := parseKeyInfoFlags(args)
	if err != nil {
		return err
	}

	svcs, closeFn, err := adminServices(cmdCtx)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	res, err := svcs.KeyInfo.Get(ctx, opts.Key, opts.BaseURL)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(cmdCtx.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return renderKeyInfo(cmdCtx.Stdout, svcs.KeyInfoClient.ResolveBaseURL(opts.BaseURL), res)
}

func renderKeyInfo(w io.Writer, baseURL string, res core.KeyInfoResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"Base URL", baseURL},
		{"Status", string(res.Status)},
		{"Cache", res.Cache},
	}
	if !res.FetchedAt.IsZero() {
		rows = append(rows, [2]string{"Fetched at", res.FetchedAt.UTC().Format(time.RFC3339)})
	}
	if info := res.Info; info != nil {
		label := "-"
		if info.Label != nil {
			label = *info.Label
		}
		limit := "unlimited"
		if info.Limit != nil {
			limit = formatCredits(*info.Limit)
		}
		remaining := "-"
		if r, ok := info.Remaining(); ok {
			remaining = formatCredits(r)
		}
		rows = append(rows,
			[2]string{"Label", label},
			[2]string{"Usage", formatCredits(info.Usage)},
			[2]string{"Limit", limit},
			[2]string{"Remaining", remaining},
			[2]string{"Free tier", yesNo(info.IsFreeTier)},
			[2]string{"Provisioning key", yesNo(info.IsProvisioningKey)},
			[2]string{"Rate limit", fmt.Sprintf("%s requests / %s",
				formatCredits(info.RateLimit.Requests), info.RateLimit.Interval)},
		)
	}

	for _, row := range rows {
		if err := writef(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return fmt.Errorf("write key info row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush key info table: %w", err)
	}
	return nil
}

func formatCredits(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func runClearKeyInfoCache(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearKeyInfoFlags(args)
	if err != nil {
		return err
	}
	if !cmdCtx.Config.UsesRedis() {
		return errors.New("key info cache is in memory; only KEY_INFO_BACKEND=redis has entries to clear")
	}

	action := "clear the cached key info for one key"
	if opts.All {
		action = "clear every cached key info entry"
	}
	if confirmErr := confirmAction(cmdCtx, opts.Yes, action); confirmErr != nil {
		return confirmErr
	}

	svcs, closeFn, err := adminServices(cmdCtx)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	if opts.All {
		n, delErr := svcs.RedisCache.DeletePrefix(ctx, core.KeyInfoKeyPrefix)
		if delErr != nil {
			return fmt.Errorf("clear key info cache: %w", delErr)
		}
		return writef(cmdCtx.Stdout, "Deleted %d cached key info entries\n", n)
	}

	deleted, err := svcs.KeyInfo.Invalidate(ctx, opts.Key, opts.BaseURL)
	if err != nil {
		return err
	}
	if !deleted {
		return writeln(cmdCtx.Stdout, "No cached entry for that key")
	}
	return writeln(cmdCtx.Stdout, "Cached entry deleted")
}
