package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	adminUser     string
	bind          string
	channelSecret string
	channelToken  string
	friendLink    string
	playground    bool
	port          int
	prefix        string
	profile       bool
	storagePath   string
	storageToken  string
	tlsCert       string
	tlsKey        string
	verbose       bool
	version       bool
}

func (c *Config) validate() error {
	if c.channelSecret == "" {
		return errors.New("--channel-secret must be provided")
	}
	if c.channelToken == "" {
		return errors.New("--channel-token must be provided")
	}
	if c.storageToken == "" {
		return errors.New("--storage-token must be provided")
	}
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("AYA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "ayabot",
		Short:         "A chat bot that quizzes your friends on each other's faces.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.adminUser, "admin-user", "", "user id allowed to read and delete bug reports (env: AYA_ADMIN_USER)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: AYA_BIND)")
	fs.StringVar(&cfg.channelSecret, "channel-secret", "", "messaging channel secret for webhook signatures (env: AYA_CHANNEL_SECRET)")
	fs.StringVar(&cfg.channelToken, "channel-token", "", "messaging channel access token (env: AYA_CHANNEL_TOKEN)")
	fs.StringVar(&cfg.friendLink, "friend-link", "", "add-friend link rendered by the /qr endpoint (env: AYA_FRIEND_LINK)")
	fs.BoolVar(&cfg.playground, "playground", false, "serve the browser playground (env: AYA_PLAYGROUND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: AYA_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: AYA_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: AYA_PROFILE)")
	fs.StringVar(&cfg.storagePath, "storage-path", "", "base folder holding the photo categories (env: AYA_STORAGE_PATH)")
	fs.StringVar(&cfg.storageToken, "storage-token", "", "object storage access token (env: AYA_STORAGE_TOKEN)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: AYA_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: AYA_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: AYA_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: AYA_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("ayabot v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
