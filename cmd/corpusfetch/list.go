package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/corpusfetch/internal/catalog"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the collections available for download",
		Long: `List prints every collection the download command accepts, with its
Hebrew name, page range, layout and default commentaries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			md := markdown.NewMarkdown(cmd.OutOrStdout())
			md.Table(catalogTable(catalog.All()))
			return md.Build()
		},
	}
}

// catalogTable renders collections as table rows.
func catalogTable(collections []catalog.Collection) markdown.TableSet {
	rows := make([][]string, 0, len(collections))
	for _, c := range collections {
		layout := "per page"
		if c.Layout == catalog.LayoutWholeBook {
			layout = "whole book"
		}

		variants := make([]string, 0, len(c.Variants))
		for _, v := range c.Variants {
			variants = append(variants, v.String())
		}
		commentary := strings.Join(variants, ", ")
		if commentary == "" {
			commentary = "-"
		}

		rows = append(rows, []string{
			c.Name,
			c.Hebrew,
			fmt.Sprintf("%d-%d", c.FirstPage, c.LastPage),
			strconv.Itoa(c.Pages()),
			layout,
			commentary,
		})
	}
	return markdown.TableSet{
		Header: []string{"Collection", "Hebrew", "Pages", "Count", "Layout", "Commentary"},
		Rows:   rows,
	}
}
