/*
Copyright 2024 The Flowtable Authors.

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

// Package render formats a snapshot of table contents for terminal display.
// Purely read-only; rendering has no correctness impact on the table.
package render

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
)

// ANSITable writes the rows as an aligned two-column table with a colored
// title and header. Rows are sorted by key for stable output.
func ANSITable(w io.Writer, title string, rows map[string]string) error {
	titleColor := color.New(color.FgCyan, color.Bold)
	headerColor := color.New(color.Bold)

	if _, err := titleColor.Fprintln(w, title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	if _, err := headerColor.Fprintln(tw, "KEY\tVALUE"); err != nil {
		return err
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", k, rows[k]); err != nil {
			return err
		}
	}
	return tw.Flush()
}
