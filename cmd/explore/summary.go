package explore

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hitzhangjie/codesize/pkg/report"
)

var filesCmd = &cobra.Command{
	Use:   "files [n]",
	Short: "体积最大的n个文件",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupSummary,
	},
	Aliases: []string{"f"},
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildReport(args)
		if err != nil {
			return err
		}
		return r.WriteFiles(cmd.OutOrStdout())
	},
}

var linesCmd = &cobra.Command{
	Use:   "lines [n]",
	Short: "体积最大的n行源码",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupSummary,
	},
	Aliases: []string{"l"},
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildReport(args)
		if err != nil {
			return err
		}
		return r.WriteLines(cmd.OutOrStdout())
	},
}

var duCmd = &cobra.Command{
	Use:   "du [all]",
	Short: "按目录汇总体积，all同时输出文件",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupSummary,
	},
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := CurrentSession.Tree()
		if err != nil {
			return err
		}
		return tree.Du(cmd.OutOrStdout(), len(args) != 0 && args[0] == "all")
	},
}

var dirsCmd = &cobra.Command{
	Use:   "dirs [n]",
	Short: "体积最大的n个目录",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupSummary,
	},
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseCount(args, viper.GetInt("top-files"))
		if err != nil {
			return err
		}
		tree, err := CurrentSession.Tree()
		if err != nil {
			return err
		}
		return report.WriteDirs(cmd.OutOrStdout(), tree.Flat(), n)
	},
}

func init() {
	exploreRootCmd.AddCommand(filesCmd, linesCmd, duCmd, dirsCmd)
}

func buildReport(args []string) (report.Report, error) {
	opts := report.Options{
		TopFiles:    viper.GetInt("top-files"),
		TopLines:    viper.GetInt("top-lines"),
		MinAvgBytes: viper.GetFloat64("min-avg"),
		Places:      viper.GetBool("places"),
	}
	if len(args) != 0 {
		n, err := parseCount(args, 0)
		if err != nil {
			return report.Report{}, err
		}
		opts.TopFiles, opts.TopLines = n, n
	}
	return report.Build(CurrentSession.model, opts)
}

func parseCount(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}
	return n, nil
}
