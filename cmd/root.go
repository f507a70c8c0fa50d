package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/TFMV/treescan/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "treescan [options] <path>",
	Short: "Count the files beneath a directory",
	Long: `treescan walks a directory tree concurrently and reports how many files it
holds, pruning any directory matched by the ignore options.

Nothing is ignored by default. Examples:
  treescan . --ignore=.git,node_modules
  treescan . --gitignore --ignore-glob="*.log"
  treescan list . --template="{base} ({size} bytes)"`,
	Version: version,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCount(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.treescan.yaml)")
	rootCmd.PersistentFlags().IntP("workers", "w", walk.DefaultConcurrentWalks, "Maximum concurrent directory descents")
	rootCmd.PersistentFlags().Int("stat-workers", walk.DefaultStatConcurrency, "Maximum concurrent metadata reads per directory")
	rootCmd.PersistentFlags().StringSlice("ignore", nil, "Paths under the root to ignore (comma-separated, e.g. .git,node_modules)")
	rootCmd.PersistentFlags().StringSlice("ignore-glob", nil, "Base name glob patterns to ignore (e.g. *.log)")
	rootCmd.PersistentFlags().Bool("gitignore", false, "Ignore entries matched by <path>/.gitignore")
	rootCmd.PersistentFlags().Bool("skip-hidden", false, "Ignore dot-prefixed files and directories")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("silent", false, "Disable all output except errors")
	rootCmd.PersistentFlags().String("format", "text", "Output format (text|json)")
	rootCmd.PersistentFlags().Bool("progress", false, "Log progress updates")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Abort the walk after this duration (0 means no limit)")

	for _, name := range []string{
		"workers", "stat-workers", "ignore", "ignore-glob", "gitignore", "skip-hidden",
		"verbose", "silent", "format", "progress", "timeout",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			// Search config in home directory with name ".treescan" (without extension).
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".treescan")
	}

	viper.SetEnvPrefix("treescan")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// scan runs one walk configured from viper and returns the collected files.
func scan(ctx context.Context, root string) ([]walk.Entry, error) {
	logLevel := walk.LogLevelInfo
	if viper.GetBool("verbose") {
		logLevel = walk.LogLevelDebug
	} else if viper.GetBool("silent") {
		logLevel = walk.LogLevelError
	}
	logger := walk.NewLogger(logLevel)
	defer logger.Sync()

	ignore, err := buildIgnore(root)
	if err != nil {
		return nil, err
	}

	opts := walk.NewOptions(logger)
	opts.Concurrency = viper.GetInt("workers")
	opts.StatConcurrency = viper.GetInt("stat-workers")
	opts.LogLevel = logLevel
	if viper.GetBool("progress") {
		opts.Progress = walk.LoggingProgress(logger)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	files, err := walk.WalkWithOptions(ctx, root, ignore, opts)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	logger.Info("scan complete",
		zap.String("root", root),
		zap.Int("files", len(files)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return files, nil
}

// buildIgnore combines the ignore options into one predicate. With no
// options set nothing is ignored.
func buildIgnore(root string) (walk.IgnoreFunc, error) {
	var preds []walk.IgnoreFunc

	if fragments := viper.GetStringSlice("ignore"); len(fragments) > 0 {
		preds = append(preds, walk.IgnorePrefixes(root, fragments...))
	}
	if patterns := viper.GetStringSlice("ignore-glob"); len(patterns) > 0 {
		globs, err := walk.IgnoreGlobs(patterns...)
		if err != nil {
			return nil, err
		}
		preds = append(preds, globs)
	}
	if viper.GetBool("gitignore") {
		gi, err := walk.IgnoreGitignore(root)
		if err != nil {
			return nil, fmt.Errorf("load .gitignore: %w", err)
		}
		preds = append(preds, gi)
	}
	if viper.GetBool("skip-hidden") {
		preds = append(preds, walk.IgnoreHidden())
	}

	if len(preds) == 0 {
		return nil, nil
	}
	return walk.AnyIgnore(preds...), nil
}

func runCount(ctx context.Context, out io.Writer, root string) error {
	files, err := scan(ctx, root)
	if err != nil {
		return err
	}

	switch viper.GetString("format") {
	case "json":
		return json.NewEncoder(out).Encode(map[string]interface{}{
			"root":  root,
			"count": len(files),
		})
	case "text":
		if !viper.GetBool("silent") {
			fmt.Fprintln(out, walk.Summary(files))
		}
		return nil
	default:
		return fmt.Errorf("invalid format: %s", viper.GetString("format"))
	}
}
