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
	"github.com/spf13/cobra"

	"github.com/hitzhangjie/codesize/cmd/explore"
)

// exploreCmd represents the explore command
var exploreCmd = &cobra.Command{
	Use:   "explore [binary]",
	Short: "交互式查看分析结果",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadModel(args)
		if err != nil {
			return err
		}
		explore.CurrentSession = explore.NewSession(m)
		return explore.CurrentSession.Start()
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}
