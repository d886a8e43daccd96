/*
Copyright © 2020 hit.zhangjie@gmail.com

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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hitzhangjie/codesize/pkg/blame"
	"github.com/hitzhangjie/codesize/pkg/report"
	"github.com/hitzhangjie/codesize/pkg/symbol"
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate <binary> [file:lineno]...",
	Short: "反汇编指定源码行对应的机器指令",
	Long: `反汇编指定源码行对应的机器指令，未指定源码行时输出体积最大的--top-lines行。

文件名可以是完整路径，也可以是唯一匹配的路径后缀，如 lib/a.c:10。`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		binary := args[0]

		m, err := loadModel(args[:1])
		if err != nil {
			return err
		}

		var lines []*blame.Line
		for _, loc := range args[1:] {
			l, err := findLine(m, loc)
			if err != nil {
				return err
			}
			lines = append(lines, l)
		}
		if len(lines) == 0 {
			opts := reportOptions()
			lines = report.RankLines(m.Files, opts.MinAvgBytes)
			if opts.TopLines > 0 && opts.TopLines < len(lines) {
				lines = lines[:opts.TopLines]
			}
		}

		listing, err := symbol.DisassembleFile(binary, viper.GetString("syntax"))
		if err != nil {
			return fmt.Errorf("disassemble: %w", err)
		}
		logf("disassembled %d instructions", listing.Len())

		for _, l := range lines {
			if err = report.Annotate(os.Stdout, l, listing); err != nil {
				return err
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(annotateCmd)
}

// findLine resolves `file:lineno` against the model.
func findLine(m *blame.Model, loc string) (*blame.Line, error) {
	name, lineno, err := symbol.ParseLoc(loc)
	if err != nil {
		return nil, err
	}
	f, err := m.FindFile(name)
	if err != nil {
		return nil, err
	}
	l := f.Line(lineno)
	if l == nil {
		return nil, errors.New("no code attributed to " + loc)
	}
	return l, nil
}
