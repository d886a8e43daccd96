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
	"os"

	"github.com/spf13/cobra"

	"github.com/hitzhangjie/codesize/pkg/blame"
	"github.com/hitzhangjie/codesize/pkg/report"
)

// duCmd represents the du command
var duCmd = &cobra.Command{
	Use:   "du [binary]",
	Short: "按目录汇总代码体积",
	Long: `按目录汇总代码体积，输出格式与du相同：先输出子目录，再输出父目录。

--flat N 按体积降序输出前N个目录。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			all, _  = cmd.Flags().GetBool("all")
			flat, _ = cmd.Flags().GetInt("flat")
		)

		m, err := loadModel(args)
		if err != nil {
			return err
		}

		root, err := blame.BuildTree(m.Files)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("flat") {
			return report.WriteDirs(os.Stdout, root.Flat(), flat)
		}
		return root.Du(os.Stdout, all)
	},
}

func init() {
	rootCmd.AddCommand(duCmd)

	duCmd.Flags().BoolP("all", "a", false, "同时输出文件")
	duCmd.Flags().Int("flat", 0, "按体积排序输出前N个目录，0表示全部")
}
