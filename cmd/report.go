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
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/hitzhangjie/codesize/pkg/report"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [binary]",
	Short: "按文件和源码行输出代码体积排行",
	Long: `按文件和源码行输出代码体积排行。

行号表默认从binary的DWARF信息读取，也可以通过--line-dump读取dwarfdump -l的文本输出，
或者通过--snapshot读取save命令保存的快照。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		m, err := loadModel(args)
		if err != nil {
			return err
		}

		r, err := report.Build(m, reportOptions())
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}
		return r.Write(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Bool("json", false, "以JSON格式输出")
}
