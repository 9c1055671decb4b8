/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/josephgoksu/agentwing/store"
	"github.com/josephgoksu/agentwing/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = ".agentwing"
	envPrefix  = "AGENTWING"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate is a single validator instance, it caches struct info
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(config *types.AppConfig) error {
	return validate.Struct(config)
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present. It's okay if it doesn't exist.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix) // e.g., AGENTWING_VERBOSE
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")

	// project.rootDir is needed before the full unmarshal to locate the
	// config file itself.
	potentialProjectConfigDir := viper.GetString("project.rootDir")
	if potentialProjectConfigDir == "" {
		potentialProjectConfigDir = ".agentwing"
	}

	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		if _, err := os.Stat(potentialProjectConfigDir); !os.IsNotExist(err) {
			viper.AddConfigPath(potentialProjectConfigDir) // ./.agentwing/.agentwing.yaml
			viper.SetConfigName(configName)
		} else {
			home, err := os.UserHomeDir()
			cobra.CheckErr(err)
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigName(configName)
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			} else if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	// Set default values
	viper.SetDefault("project.rootDir", ".agentwing")
	viper.SetDefault("data.dir", "memory")
	viper.SetDefault("data.format", "json")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowedOrigins", []string{})
	viper.SetDefault("llm.provider", "gemini")
	viper.SetDefault("llm.modelName", "")
	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("engine.multiPass", false)

	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		HandleFatalError("Configuration could not be loaded.", err)
	}

	// Handle a config file that exists but is missing these nested keys.
	if GlobalAppConfig.Project.RootDir == "" {
		GlobalAppConfig.Project.RootDir = viper.GetString("project.rootDir")
	}
	if GlobalAppConfig.Data.Dir == "" {
		GlobalAppConfig.Data.Dir = viper.GetString("data.dir")
	}

	if err := validateAppConfig(&GlobalAppConfig); err != nil {
		HandleFatalError("Configuration is invalid. Check your .agentwing config.", err)
	}
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}

// GetMemoryPath returns the directory holding the flat-file store.
func GetMemoryPath() string {
	config := GetConfig()
	if filepath.IsAbs(config.Data.Dir) {
		return config.Data.Dir
	}
	return filepath.Join(config.Project.RootDir, config.Data.Dir)
}

// GetStore initializes and returns the memory store using the unified types.AppConfig.
func GetStore() (store.MemoryStore, error) {
	s := store.NewFileMemoryStore()
	config := GetConfig()

	memoryPath := GetMemoryPath()
	err := s.Initialize(map[string]string{
		"dataDir":    memoryPath,
		"dataFormat": config.Data.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store at %s: %w", memoryPath, err)
	}
	return s, nil
}
