package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "praxis"
)

type Config struct {
	Listen string        `mapstructure:"listen"`
	CORS   *CORSConfig   `mapstructure:"cors"`
	Upload *UploadConfig `mapstructure:"upload"`
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

type UploadConfig struct {
	MaxSizeMB int64 `mapstructure:"max-size-mb"`
}

type GeminiConfig struct {
	APIKey          string `mapstructure:"api-key"`
	APIKeyFile      string `mapstructure:"api-key-file"`
	Model           string `mapstructure:"model"`
	PollIntervalSec int    `mapstructure:"poll-interval-seconds"`
	MaxPollAttempts int    `mapstructure:"max-poll-attempts"`
	MaxLogLength    int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "praxis is the backend for video-based skill verification and job matching",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is praxis.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the serve command. Defaults and environment
	// variables carry the whole configuration when no file is present.
	if serveCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}
