package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/TFMV/treescan/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list [options] <path>",
	Short: "List the files beneath a directory",
	Long: `List every file found beneath a directory, sorted by path.

The --template flag accepts these placeholders:
  {}      full path          {""}      quoted full path
  {base}  base name          {"base"}  quoted base name
  {dir}   parent directory   {"dir"}   quoted parent directory
  {size}  size in bytes      {"size"}  quoted size
  {time}  modification time  {"time"}  quoted modification time

Examples:
  treescan list . --ignore=.git
  treescan list . --template="{base} ({size} bytes)"
  treescan list . --format=json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("template", "{}", "Format string for each file")
	viper.BindPFlag("list.template", listCmd.Flags().Lookup("template"))
}

func runList(ctx context.Context, out io.Writer, root string) error {
	files, err := scan(ctx, root)
	if err != nil {
		return err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	switch viper.GetString("format") {
	case "json":
		enc := json.NewEncoder(out)
		for _, f := range files {
			if err := enc.Encode(map[string]interface{}{
				"path":          f.Path,
				"size":          f.Size,
				"mode":          f.Mode.String(),
				"last_modified": f.ModTime.Format(time.RFC3339),
			}); err != nil {
				return err
			}
		}
		return nil
	case "text":
		template := viper.GetString("list.template")
		for _, f := range files {
			fmt.Fprintln(out, walk.FormatEntry(template, f))
		}
		if !viper.GetBool("silent") {
			fmt.Fprintln(out, walk.Summary(files))
		}
		return nil
	default:
		return fmt.Errorf("invalid format: %s", viper.GetString("format"))
	}
}
