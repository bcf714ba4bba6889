package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/SystemBuilders/StripeKey/internal/config"
	"github.com/SystemBuilders/StripeKey/internal/lockclient"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	serverURL  string
	rootCmd    = &cobra.Command{
		Use:   "stripekey",
		Short: "StripeKey - forced removal of striped RADOS objects",
		Long: `StripeKey serves forced removal of libradosstriper objects whose
striper lock was left behind by a dead writer, and small object writes
flagged with the new-object hint.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "daemon URL (default from the configuration)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func loadConfig() (*config.File, error) {
	return config.Load(configPath)
}

func newLogger(cfg *config.File, w io.Writer) (zerolog.Logger, error) {
	lvl, err := cfg.LogLevel()
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl), nil
}

func newClient() (*lockclient.SimpleClient, error) {
	url := serverURL
	if url == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		url = lockclient.BaseURL(&cfg.Server)
	}
	return lockclient.NewSimpleClient(url, nil)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
