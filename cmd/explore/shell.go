package explore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hitzhangjie/codesize/pkg/blame"
	"github.com/hitzhangjie/codesize/pkg/symbol"
)

const (
	cmdGroupAnnotation = "cmd_group_annotation"

	cmdGroupSummary = "1-summary"
	cmdGroupSource  = "2-source"
	cmdGroupOthers  = "3-other"

	cmdGroupDelimiter = "-"

	prefix    = "codesize> "
	descShort = "codesize interactive commands"

	sourceCacheSize = 64
)

var exploreRootCmd = &cobra.Command{
	Use:           "help [command]",
	Short:         descShort,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	CurrentSession *Session
)

// Session 交互式查看会话
type Session struct {
	done   chan bool
	prefix string
	root   *cobra.Command
	liner  *liner.State
	last   string

	model   *blame.Model
	tree    *blame.Node
	listing *symbol.Listing
	sources *lru.Cache[string, []string] // uri -> source lines
}

// NewSession 创建一个查看model的交互会话
func NewSession(m *blame.Model) *Session {

	fn := func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		// 描述信息
		fmt.Fprintln(out, cmd.Short)
		fmt.Fprintln(out)

		// 使用信息
		fmt.Fprintln(out, cmd.Use)
		fmt.Fprintln(out, cmd.Flags().FlagUsages())

		// 命令分组
		fmt.Fprintln(out, helpMessageByGroups(cmd))
	}
	exploreRootCmd.SetHelpFunc(fn)

	// only fails for a non-positive size
	sources, _ := lru.New[string, []string](sourceCacheSize)

	return &Session{
		done:    make(chan bool),
		prefix:  prefix,
		root:    exploreRootCmd,
		model:   m,
		sources: sources,
	}
}

// Start reads and runs commands until exit or EOF.
func (s *Session) Start() error {
	s.liner = liner.NewLiner()
	defer s.liner.Close()

	s.liner.SetCtrlCAborts(true)
	s.liner.SetCompleter(completer)
	s.liner.SetTabCompletionStyle(liner.TabPrints)

	for {
		select {
		case <-s.done:
			return nil
		default:
		}

		txt, err := s.liner.Prompt(s.prefix)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		txt = strings.TrimSpace(txt)
		if len(txt) != 0 {
			s.last = txt
			s.liner.AppendHistory(txt)
		} else {
			txt = s.last
		}
		if txt == "" {
			continue
		}

		if err = s.Exec(strings.Fields(txt)...); err != nil {
			fmt.Fprintf(s.root.ErrOrStderr(), "error: %v\n", err)
		}
	}
}

// Exec runs one command line. Flags go back to their defaults afterwards,
// so `list -n 1` does not leak into the next `list`.
func (s *Session) Exec(args ...string) error {
	s.root.SetArgs(args)
	cmd, err := s.root.ExecuteC()
	if cmd != nil {
		resetFlags(cmd)
	}
	return err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// Stop ends the session after the running command.
func (s *Session) Stop() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// Tree returns the directory tree, built on first use.
func (s *Session) Tree() (*blame.Node, error) {
	if s.tree == nil {
		tree, err := blame.BuildTree(s.model.Files)
		if err != nil {
			return nil, err
		}
		s.tree = tree
	}
	return s.tree, nil
}

// Listing returns the disassembly of the model's binary, decoded on first use.
func (s *Session) Listing(syntax string) (*symbol.Listing, error) {
	if s.listing == nil {
		if s.model.Binary == "" {
			return nil, errors.New("no binary to disassemble")
		}
		l, err := symbol.DisassembleFile(s.model.Binary, syntax)
		if err != nil {
			return nil, err
		}
		s.listing = l
	}
	return s.listing, nil
}

// names returns the command name followed by its aliases.
func names(c *cobra.Command) []string {
	return append([]string{c.Name()}, c.Aliases...)
}

func completer(line string) []string {
	var matches []string
	for _, c := range exploreRootCmd.Commands() {
		for _, n := range names(c) {
			if strings.HasPrefix(n, line) {
				matches = append(matches, n)
			}
		}
	}
	return matches
}

// helpMessageByGroups 按分组列出命令，未分组的命令(如cobra自带的help)归入other
func helpMessageByGroups(cmd *cobra.Command) string {
	groups := map[string][]*cobra.Command{}
	for _, c := range cmd.Commands() {
		g := c.Annotations[cmdGroupAnnotation]
		if g == "" {
			g = cmdGroupOthers
		}
		groups[g] = append(groups[g], c)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		cmds := groups[k]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })

		// "1-summary" is shown as "summary"
		fmt.Fprintf(&buf, "- [%s]\n", k[strings.Index(k, cmdGroupDelimiter)+1:])
		for _, c := range cmds {
			fmt.Fprintf(&buf, "  %-16s:%s\n", c.Name(), c.Short)
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
