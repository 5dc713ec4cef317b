package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"insurance-portal/internal/table"
)

// listOptions are the table parameters shared by offers and claims
type listOptions struct {
	tab  string
	sort string
	dir  string
}

func (o *listOptions) bind(cmd *cobra.Command, tabHelp string) {
	cmd.Flags().StringVar(&o.tab, "tab", "", tabHelp)
	cmd.Flags().StringVar(&o.sort, "sort", "", "column to sort by")
	cmd.Flags().StringVar(&o.dir, "dir", "asc", "sort direction (asc|desc)")
}

// sortState validates the sort flags against schema; no --sort means the table default
func sortState[T any](schema *table.Schema[T], o *listOptions) (table.SortState, error) {
	if o.sort == "" {
		return schema.DefaultSort, nil
	}
	if _, ok := schema.Column(o.sort); !ok {
		return table.SortState{}, fmt.Errorf("unknown column %q, expected one of %s", o.sort, strings.Join(schema.Keys(), ", "))
	}
	dir, err := table.ParseDirection(o.dir)
	if err != nil {
		return table.SortState{}, err
	}
	return table.SortState{Key: o.sort, Direction: dir}, nil
}

// tabIndex resolves --tab as a tab name (any case) or index. Empty returns fallback.
func tabIndex[T any](schema *table.Schema[T], value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	names := make([]string, 0, len(schema.Tabs))
	for i, tab := range schema.Tabs {
		if strings.EqualFold(tab.Name, value) {
			return i, nil
		}
		names = append(names, tab.Name)
	}
	if n, err := strconv.Atoi(value); err == nil && n >= 0 && n < len(schema.Tabs) {
		return n, nil
	}
	return 0, fmt.Errorf("unknown tab %q, expected one of %s", value, strings.Join(names, ", "))
}
