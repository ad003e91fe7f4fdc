/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

// errPartialFailure marks a run that produced output but lost one or
// more chunks. It maps to exit code 2 so scripts can tell partial
// output from a fatal error (exit 1).
var errPartialFailure = errors.New("translation completed with failed chunks")

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "doctran",
	Short: "Chunked document translator",
	Long: `Translate large documents by splitting them into balanced token-bounded
chunks, translating the chunks concurrently, and reassembling the result
in original order.

Supported services: OpenAI, Ollama (self-hosted LLM), Google Translate

Use "doctran translate --help" for translation options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errPartialFailure) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default .doctran.yaml in cwd or home)")
}

// initConfig wires viper: explicit --config wins, otherwise a
// .doctran.yaml is searched in the working directory and home.
// Environment variables use the DOCTRAN_ prefix.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".doctran")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("DOCTRAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
