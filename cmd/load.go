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
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/hitzhangjie/codesize/pkg/blame"
	"github.com/hitzhangjie/codesize/pkg/report"
	"github.com/hitzhangjie/codesize/pkg/symbol"
)

// loadModel builds the model from a snapshot, a line-table dump or the
// binary's own DWARF, in that order of preference.
func loadModel(args []string) (*blame.Model, error) {
	binary := ""
	if len(args) != 0 {
		binary = args[0]
	}

	if snap := viper.GetString("snapshot"); snap != "" {
		f, err := os.Open(snap)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		m, err := blame.LoadModel(f)
		if err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", snap, err)
		}
		logf("loaded snapshot %s: %d files", snap, len(m.Files))
		if binary != "" {
			m.Binary = binary
		}
		return m, nil
	}

	if dump := viper.GetString("line-dump"); dump != "" {
		var r io.Reader = os.Stdin
		if dump != "-" {
			f, err := os.Open(dump)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			r = f
		}

		var sections []blame.Section
		if binary != "" {
			s, err := symbol.ReadSections(binary)
			if err != nil {
				return nil, fmt.Errorf("read sections: %w", err)
			}
			sections = s
		}
		if _, ok := blame.TextSegmentOf(sections); !ok {
			logf("no .text section known, reporting absolute sizes")
		}

		name := binary
		if name == "" {
			name = dump
		}
		m, err := symbol.AnalyzeEvents(name, symbol.ParseLineDump(r), sections)
		if err != nil {
			return nil, fmt.Errorf("line dump %s: %w", dump, err)
		}
		logStats(m)
		return m, nil
	}

	if binary == "" {
		return nil, errors.New("binary required unless --snapshot or --line-dump is given")
	}

	m, err := symbol.Analyze(binary, symbol.Options{
		Jobs: viper.GetInt("jobs"),
		Progress: func(done, total uint64) {
			if done == total {
				logf("attributed %d compile units", total)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	logStats(m)
	return m, nil
}

func logStats(m *blame.Model) {
	st := m.Stats
	logf("%d line table entries: %d attributed, %d before text segment, %d empty, %d backward",
		st.Events, st.Attributed, st.Discarded, st.Empty, st.Backward)
}

func reportOptions() report.Options {
	return report.Options{
		TopFiles:    viper.GetInt("top-files"),
		TopLines:    viper.GetInt("top-lines"),
		MinAvgBytes: viper.GetFloat64("min-avg"),
		Places:      viper.GetBool("places"),
	}
}
