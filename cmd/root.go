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
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codesize",
	Short: "按源码行统计二进制代码体积",
	Long: `codesize attributes the code bytes of a binary to the source lines that
produced them, using the DWARF line table and the section headers, then ranks
files, lines and directories by size.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.codesize.yaml)")
	flags.Int("top-files", 20, "文件排行数量")
	flags.Int("top-lines", 20, "源码行排行数量")
	flags.Float64("min-avg", 0, "隐藏平均每段字节数不超过该值的条目，0表示不过滤")
	flags.Bool("places", false, "列出每行源码对应的地址区间")
	flags.Int("jobs", 0, "并发处理的编译单元数，0表示GOMAXPROCS")
	flags.String("syntax", "gnu", "反汇编指令语法，支持：go, gnu, intel")
	flags.String("line-dump", "", "从dwarfdump -l文本读取行号表，-表示stdin")
	flags.String("snapshot", "", "从save保存的快照读取")
	flags.BoolP("verbose", "v", false, "输出处理过程信息")

	for _, key := range []string{"top-files", "top-lines", "min-avg", "places", "jobs", "syntax", "line-dump", "snapshot", "verbose"} {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".codesize" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".codesize")
	}

	viper.SetEnvPrefix("codesize")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logf("using config file: %s", viper.ConfigFileUsed())
	}
}

func logf(format string, args ...interface{}) {
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
