package explore

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hitzhangjie/codesize/pkg/blame"
	"github.com/hitzhangjie/codesize/pkg/report"
	"github.com/hitzhangjie/codesize/pkg/symbol"
)

var placesCmd = &cobra.Command{
	Use:   "places <file:lineno>",
	Short: "查看源码行对应的地址区间",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupSource,
	},
	Aliases: []string{"p"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := findLine(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d bytes in %d places\n", l, l.Total, len(l.Places))
		if covered := l.Covered(); covered != l.Total {
			// overlapping rows in the line table
			fmt.Fprintf(out, "  %d bytes covered, %d bytes overlap\n", covered, l.Total-covered)
		}
		for _, p := range l.Places {
			fmt.Fprintf(out, "\t%s\t%d bytes\n", p, p.Length)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list <file:lineno>",
	Short: "查看源码及每行的代码体积",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupSource,
	},
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rng, _ := cmd.Flags().GetInt("range")

		name, lineno, err := symbol.ParseLoc(args[0])
		if err != nil {
			return err
		}
		f, err := CurrentSession.model.FindFile(name)
		if err != nil {
			return err
		}
		lines, err := CurrentSession.source(f)
		if err != nil {
			return err
		}
		return report.ListSource(cmd.OutOrStdout(), f, lines, int(lineno), rng)
	},
}

var disassCmd = &cobra.Command{
	Use:   "disass <file:lineno>",
	Short: "反汇编源码行对应的机器指令",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupSource,
	},
	Aliases: []string{"dis", "disassemble"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := findLine(args[0])
		if err != nil {
			return err
		}
		listing, err := CurrentSession.Listing(viper.GetString("syntax"))
		if err != nil {
			return err
		}
		return report.Annotate(cmd.OutOrStdout(), l, listing)
	},
}

var exitCmd = &cobra.Command{
	Use:   "exit",
	Short: "结束会话",
	Annotations: map[string]string{
		cmdGroupAnnotation: cmdGroupOthers,
	},
	Aliases: []string{"quit", "q"},
	Run: func(cmd *cobra.Command, args []string) {
		CurrentSession.Stop()
	},
}

func init() {
	exploreRootCmd.AddCommand(placesCmd, listCmd, disassCmd, exitCmd)

	listCmd.Flags().IntP("range", "n", 5, "显示目标行前后的行数")
}

func findLine(loc string) (*blame.Line, error) {
	name, lineno, err := symbol.ParseLoc(loc)
	if err != nil {
		return nil, err
	}
	f, err := CurrentSession.model.FindFile(name)
	if err != nil {
		return nil, err
	}
	l := f.Line(lineno)
	if l == nil {
		return nil, fmt.Errorf("no code attributed to %s:%d", f.URI, lineno)
	}
	return l, nil
}

// source returns the lines of f's source text, read from disk once.
func (s *Session) source(f *blame.File) ([]string, error) {
	if lines, ok := s.sources.Get(f.URI); ok {
		return lines, nil
	}
	dat, err := os.ReadFile(f.URI)
	if err != nil {
		return nil, fmt.Errorf("read file err: %v", err)
	}
	lines := strings.Split(string(dat), "\n")
	s.sources.Add(f.URI, lines)
	return lines, nil
}
