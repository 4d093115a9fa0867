// Package cli wires the quickfind commands and their flags.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pseudoincorrect/quickfind/internal/config"
	"github.com/pseudoincorrect/quickfind/internal/search"
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "quickfind",
	Short: "Search file contents and names under a directory",
	Long: `Quickfind searches a directory tree two ways: "text" scans file
contents line by line for a literal or regular expression pattern, and
"name" ranks files fuzzily by their names and paths.

Version control, dependency and build directories are skipped, along with
anything matched by a .quickfindignore or .gitignore file at the root.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		config.ConfigureLogger(verboseFlag)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func init() {
	config.Init()

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	pf.Bool("hidden", viper.GetBool("search.include_hidden"), "include hidden files and directories")
	pf.Int("max-results", viper.GetInt("search.max_results"), "stop after this many results")
	bindFlagToConfig(pf.Lookup("hidden"), "search.include_hidden")
	bindFlagToConfig(pf.Lookup("max-results"), "search.max_results")

	rootCmd.AddCommand(textCmd, nameCmd)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values
// feed the flag and set flags win over both.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveRoot turns the optional positional root argument into a search
// root, distinguishing a single file from a directory tree.
func resolveRoot(args []string) search.SearchRoot {
	path := "."
	if len(args) == 2 {
		path = args[1]
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return search.SearchRoot{Path: path, Scope: search.ScopeFile}
	}
	return search.SearchRoot{Path: path, Scope: search.ScopeTree}
}
