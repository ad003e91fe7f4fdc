/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/doctran/internal/glossary"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Inspect glossary files",
	Long: `Validate and list glossary JSON files.

A glossary is a JSON array of {"term": ..., "translation": ...} objects.
During translation its entries pin specific source terms to fixed target
terms: useful for proper nouns, brand names, and domain vocabulary.`,
}

var glossaryCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a glossary file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gl, err := glossary.Load(args[0])
		if err != nil {
			return fmt.Errorf("glossary is invalid: %w", err)
		}
		fmt.Printf("Glossary is valid: %d terms\n", gl.Len())
		return nil
	},
}

var glossaryListCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List the entries of a glossary file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gl, err := glossary.Load(args[0])
		if err != nil {
			return fmt.Errorf("failed to load glossary: %w", err)
		}

		if gl.Len() == 0 {
			fmt.Println("Glossary is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TERM\tTRANSLATION")
		for _, e := range gl.Entries {
			fmt.Fprintf(w, "%s\t%s\n", e.Term, e.Translation)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	glossaryCmd.AddCommand(glossaryCheckCmd)
	glossaryCmd.AddCommand(glossaryListCmd)
}
