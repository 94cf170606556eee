package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ytget/bili-audio/internal/bili"
	"github.com/ytget/bili-audio/internal/bridge"
	"github.com/ytget/bili-audio/internal/config"
	"github.com/ytget/bili-audio/internal/library"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globals holds the persistent flags and what they resolve to.
type globals struct {
	configPath string
	cookie     string
	timeout    string
	salt       string
	baseURL    string
	statePath  string
	verbose    bool

	cfg    *config.FileConfig
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "bili-audio",
		Short:         "List creators' uploads and save their audio",
		Long:          "bili-audio signs platform requests, lists a creator's uploads and downloads their audio as tagged MP3 files.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "path to config file (default "+config.DefaultConfigPath()+")")
	pf.StringVar(&g.cookie, "cookie", "", "cookie header sent with listing requests (overrides config and "+config.EnvCookie+")")
	pf.StringVar(&g.timeout, "timeout", "", "timeout for each API request (e.g. 15s)")
	pf.StringVar(&g.salt, "salt", "", "signature salt mode: concat or mixin")
	pf.StringVar(&g.baseURL, "base-url", bili.DefaultBaseURL, "API base URL")
	pf.StringVar(&g.statePath, "state", "", "path to the creator list file")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")
	pf.MarkHidden("base-url")

	root.AddCommand(
		newVersionCmd(),
		newSignCmd(g),
		newResolveCmd(g),
		newStreamsCmd(g),
		newListingCmd(g),
		newCreatorsCmd(g),
		newSyncCmd(g),
		newDownloadCmd(g),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bili-audio %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func (g *globals) load(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	g.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	path := g.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if g.timeout != "" {
		cfg.Timeout = g.timeout
	}
	if g.salt != "" {
		cfg.SaltMode = config.SaltMode(g.salt)
	}
	if g.statePath != "" {
		cfg.StateFile = g.statePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	return nil
}

// cookieValue prefers the flag, then the environment, then the config file.
func (g *globals) cookieValue() string {
	if g.cookie != "" {
		return g.cookie
	}
	return g.cfg.ResolvedCookie()
}

func (g *globals) client() *bili.Client {
	return bili.NewClient(
		bili.WithBaseURL(g.baseURL),
		bili.WithHTTPClient(&http.Client{Timeout: g.cfg.TimeoutDuration()}),
		bili.WithSigner(bili.Signer{Salt: g.cfg.SaltMode.Func()}),
		bili.WithLogger(g.logger),
	)
}

func (g *globals) bridge() *bridge.Bridge {
	return bridge.New(g.client(), g.logger)
}

func (g *globals) library() (*library.Library, error) {
	kv, err := config.OpenFileKV(g.cfg.GetStateFile())
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}
	return library.New(g.bridge(), config.NewCreatorStore(kv), g.logger), nil
}
