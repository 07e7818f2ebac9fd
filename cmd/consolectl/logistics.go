package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/bizconsole/backend/internal/bootstrap"
	"github.com/bizconsole/backend/internal/infrastructure/cache"
	"github.com/bizconsole/backend/internal/infrastructure/logisticsclient"
	"github.com/bizconsole/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logisticsBaseURL string
	logisticsToken   string
	logisticsParams  []string
	logisticsRepeat  int
)

var logisticsCmd = &cobra.Command{
	Use:   "logistics",
	Short: "Browse the logistics API through the caching client",
	Long: `Query a running logistics API. Results go through the client's tag cache;
--repeat issues the same query several times and reports cache statistics.
With cache.pubsub_enabled, deletes are broadcast to other client instances.`,
}

// withClient builds a client from config and flags and runs fn
func withClient(fn func(l *logisticsclient.Logistics, c *logisticsclient.Client) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if logisticsBaseURL != "" {
		cfg.LogisticsClient.BaseURL = logisticsBaseURL
	}
	if cfg.LogisticsClient.BaseURL == "" {
		return fmt.Errorf("logistics_client.base_url is not set (use --base-url)")
	}

	opts := []logisticsclient.Option{
		logisticsclient.WithLogger(log),
		logisticsclient.WithMetrics(telemetry.NewMetrics()),
	}
	if logisticsToken != "" {
		opts = append(opts, logisticsclient.WithBearerToken(logisticsToken))
	}
	if cfg.Cache.PubSubEnabled {
		rdb := bootstrap.NewRedis(cfg)
		defer rdb.Close()
		opts = append(opts, logisticsclient.WithInvalidator(cache.NewRedisTagInvalidator(rdb,
			cache.WithInvalidationChannel(cfg.Cache.PubSubChannel),
			cache.WithInvalidatorLogger(log))))
	}

	client := logisticsclient.NewFromConfig(cfg, opts...)
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn("Failed to close logistics client", zap.Error(err))
		}
	}()
	return fn(logisticsclient.NewLogistics(client), client)
}

func browser(l *logisticsclient.Logistics, name string) (logisticsclient.Browser, error) {
	b, ok := l.Browser(name)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q (one of %s)", name, strings.Join(l.ResourceNames(), ", "))
	}
	return b, nil
}

func parseParams(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("param %q is not key=value", p)
		}
		params.Add(k, v)
	}
	return params, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printStats(cmd *cobra.Command, c *logisticsclient.Client) {
	s := c.Cache().Stats()
	fmt.Fprintf(cmd.ErrOrStderr(), "cache: %d hits, %d misses, %d entries\n", s.Hits, s.Misses, s.Entries)
}

var logisticsResourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the resource names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := logisticsclient.New("http://localhost")
		defer c.Close()
		l := logisticsclient.NewLogistics(c)
		for _, name := range l.ResourceNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var logisticsListCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "Search a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := parseParams(logisticsParams)
		if err != nil {
			return err
		}
		return withClient(func(l *logisticsclient.Logistics, c *logisticsclient.Client) error {
			b, err := browser(l, args[0])
			if err != nil {
				return err
			}
			var page any
			for i := 0; i < max(logisticsRepeat, 1); i++ {
				if page, err = b.SearchAny(cmd.Context(), params); err != nil {
					return err
				}
			}
			printStats(cmd, c)
			return printJSON(cmd, page)
		})
	},
}

var logisticsGetCmd = &cobra.Command{
	Use:   "get <resource> <id>",
	Short: "Fetch one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}
		return withClient(func(l *logisticsclient.Logistics, c *logisticsclient.Client) error {
			b, err := browser(l, args[0])
			if err != nil {
				return err
			}
			var record any
			for i := 0; i < max(logisticsRepeat, 1); i++ {
				if record, err = b.GetAny(cmd.Context(), id); err != nil {
					return err
				}
			}
			printStats(cmd, c)
			return printJSON(cmd, record)
		})
	},
}

var logisticsDeleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}
		return withClient(func(l *logisticsclient.Logistics, _ *logisticsclient.Client) error {
			b, err := browser(l, args[0])
			if err != nil {
				return err
			}
			if err := b.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", b.Name(), id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(logisticsCmd)
	logisticsCmd.AddCommand(logisticsResourcesCmd, logisticsListCmd, logisticsGetCmd, logisticsDeleteCmd)

	logisticsCmd.PersistentFlags().StringVar(&logisticsBaseURL, "base-url", "", "Override logistics_client.base_url")
	logisticsCmd.PersistentFlags().StringVar(&logisticsToken, "token", "", "Bearer token from /api/v1/auth/login")
	logisticsCmd.PersistentFlags().IntVar(&logisticsRepeat, "repeat", 1, "Issue the query this many times")
	logisticsListCmd.Flags().StringArrayVarP(&logisticsParams, "param", "p", nil, "Query parameter key=value (repeatable)")
}
