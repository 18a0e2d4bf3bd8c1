// This CLI utility compiles markweave source files.
//
// Usage:
//
//	markweave [command]
//
// Available Commands:
//
//	html        HTML output for markweave source files
//	json        Structured tree output for markweave source files
//	outline     In-page navigation entries for markweave source files
//	import      Convert a file into a stored content document
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/markweave/internal/compiler"
	"github.com/dgallion1/markweave/internal/content"
	"github.com/dgallion1/markweave/internal/doctree"
	"github.com/dgallion1/markweave/internal/source"
	"github.com/spf13/cobra"
)

func prefix(msg string, err error) error {
	return errors.New(msg + err.Error())
}

// openIO resolves the optional input argument and output flag, defaulting to
// the command's standard streams.
func openIO(cmd *cobra.Command, args []string, outputfile string) (io.ReadCloser, io.WriteCloser, error) {
	src := io.NopCloser(cmd.InOrStdin())
	if len(args) != 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, nil, err
		}
		src = f
	}
	out := nopWriteCloser{cmd.OutOrStdout()}
	if len(outputfile) != 0 {
		f, err := os.Create(outputfile)
		if err != nil {
			src.Close()
			return nil, nil, err
		}
		return src, f, nil
	}
	return src, out, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compileFrom(src io.Reader) (*doctree.Compiled, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(string(raw))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "markweave",
		Short: "compiler for markweave source files",
		Long: `This CLI utility compiles Markdown extended with bracketed
shortcodes into HTML or a structured document tree.`,
		SilenceUsage: true,
	}

	var outputfile string
	var title, lastEdited string
	prefixHTML := "(HTML) "
	htmlCmd := &cobra.Command{
		Use:   "html [input] [-o output]",
		Short: "HTML output for markweave source files",
		Long: `This command compiles a markweave source file to HTML.
Code blocks and inline code are never expanded. With --title the
output is wrapped in the page fragment with a title heading and an
optional last-edited line.

If no input file is specified, input is read from
standard input. Similarly, if no output argument is
specified, output is written to standard output.`,
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, out, err := openIO(cmd, args, outputfile)
			if err != nil {
				return prefix(prefixHTML, err)
			}
			defer src.Close()
			defer out.Close()

			compiled, err := compileFrom(src)
			if err != nil {
				return prefix(prefixHTML, err)
			}
			if title != "" {
				doc := &doctree.Document{ID: "page", FullTitle: title, LastEdited: lastEdited}
				err = compiler.Page(out, doc, compiled)
			} else {
				err = doctree.Render(out, compiled.Tree.Children)
			}
			if err != nil {
				return prefix(prefixHTML, err)
			}
			return nil
		},
	}
	htmlCmd.Flags().StringVarP(&outputfile, "output", "o", "", "``name of the output file")
	htmlCmd.Flags().StringVar(&title, "title", "", "``wrap output in a page with this title")
	htmlCmd.Flags().StringVar(&lastEdited, "last-edited", "", "``last-edited line shown under the title")

	var jsonOutput string
	prefixJSON := "(JSON) "
	jsonCmd := &cobra.Command{
		Use:                   "json [input] [-o output]",
		Short:                 "Structured tree output for markweave source files",
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, out, err := openIO(cmd, args, jsonOutput)
			if err != nil {
				return prefix(prefixJSON, err)
			}
			defer src.Close()
			defer out.Close()

			compiled, err := compileFrom(src)
			if err != nil {
				return prefix(prefixJSON, err)
			}
			if err := writeJSON(out, compiled); err != nil {
				return prefix(prefixJSON, err)
			}
			return nil
		},
	}
	jsonCmd.Flags().StringVarP(&jsonOutput, "output", "o", "", "``name of the output file")

	prefixOutline := "(outline) "
	outlineCmd := &cobra.Command{
		Use:                   "outline [input]",
		Short:                 "In-page navigation entries for markweave source files",
		Args:                  cobra.MaximumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, out, err := openIO(cmd, args, "")
			if err != nil {
				return prefix(prefixOutline, err)
			}
			defer src.Close()

			compiled, err := compileFrom(src)
			if err != nil {
				return prefix(prefixOutline, err)
			}
			for _, e := range compiled.Outline {
				indent := ""
				if e.Level == 3 {
					indent = "  "
				}
				fmt.Fprintf(out, "%s#%s %s\n", indent, e.ID, e.Label)
			}
			return nil
		},
	}

	var contentDir, docID string
	var views []string
	var pdfFallback bool
	prefixImport := "(import) "
	importCmd := &cobra.Command{
		Use:   "import file [--dir content]",
		Short: "Convert a file into a stored content document",
		Long: `This command converts a .md, .txt, .json, .csv, .html,
.pdf or .docx file into a content document and writes it to the
content directory, replacing any document with the same id.`,
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			importer, err := source.ForFile(args[0], source.WithPDFFallback(pdfFallback))
			if err != nil {
				return prefix(prefixImport, err)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return prefix(prefixImport, err)
			}
			defer f.Close()

			doc, err := importer.Import(f, args[0])
			if err != nil {
				return prefix(prefixImport, err)
			}
			if docID != "" {
				doc.ID = docID
			}
			if len(views) != 0 {
				doc.Views = views
			}
			if err := content.NewDirStore(contentDir).Put(cmd.Context(), doc); err != nil {
				return prefix(prefixImport, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s)\n", doc.ID, doc.FullTitle)
			return nil
		},
	}
	importCmd.Flags().StringVar(&contentDir, "dir", "./content", "``content directory to write to")
	importCmd.Flags().StringVar(&docID, "id", "", "``document id, derived from the filename by default")
	importCmd.Flags().StringSliceVar(&views, "view", nil, "``visibility tag; repeatable")
	importCmd.Flags().BoolVar(&pdfFallback, "pdftotext", true, "fall back to pdftotext for unreadable PDFs")

	rootCmd.AddCommand(htmlCmd, jsonCmd, outlineCmd, importCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
