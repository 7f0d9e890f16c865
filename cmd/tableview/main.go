// Command tableview prints one page of a CSV or JSON file after applying
// search, filter and sort refinements.
//
//	tableview --columns columns.json --data users.csv \
//	    --search name=ann --filter status=open --sort created:desc --page 2
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/deeptable/internal/column"
	"github.com/JonMunkholm/deeptable/internal/logging"
	"github.com/JonMunkholm/deeptable/internal/ordering"
	"github.com/JonMunkholm/deeptable/internal/pager"
	"github.com/JonMunkholm/deeptable/internal/source"
	"github.com/JonMunkholm/deeptable/internal/view"
)

// options are the parsed command line flags.
type options struct {
	columns  string
	data     string
	search   []string
	filter   []string
	sort     string
	page     int
	pageSize int
	locale   string
	export   string
	json     bool
	logLevel string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "tableview:", source.Messages.Format(err))
			fmt.Fprintln(os.Stderr, "  detail:", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := pflag.NewFlagSet("tableview", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.columns, "columns", "c", "", "column descriptor file (JSON, comments allowed)")
	fs.StringVarP(&opts.data, "data", "d", "", "record file (.csv or .json)")
	fs.StringArrayVarP(&opts.search, "search", "s", nil, "search term as column=term (repeatable)")
	fs.StringArrayVarP(&opts.filter, "filter", "f", nil, "filter as column=value (repeatable)")
	fs.StringVar(&opts.sort, "sort", "", "sort column, optionally suffixed :desc")
	fs.IntVarP(&opts.page, "page", "p", 1, "page to print")
	fs.IntVarP(&opts.pageSize, "page-size", "n", pager.DefaultPageSize, fmt.Sprintf("rows per page, one of %v", pager.PageSizes))
	fs.StringVar(&opts.locale, "locale", "en", "BCP 47 tag used to collate strings")
	fs.StringVarP(&opts.export, "export", "o", "", "also write every displayed row to this CSV file")
	fs.BoolVar(&opts.json, "json", false, "print the page as JSON instead of a table")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level on stderr: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.columns == "" || opts.data == "" {
		return opts, errors.New("--columns and --data are required")
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	locale, err := language.Parse(opts.locale)
	if err != nil {
		return fmt.Errorf("--locale %q: %w", opts.locale, err)
	}

	cols, err := source.LoadColumns(opts.columns)
	if err != nil {
		return err
	}
	reg, err := column.NewRegistry(cols)
	if err != nil {
		return err
	}
	loader, err := source.NewFile(opts.data, reg)
	if err != nil {
		return err
	}
	records, err := loader.Load(context.Background())
	if err != nil {
		return err
	}

	table, err := view.New(cols, records, view.Config{
		Locale: locale,
		Logger: logging.New(stderr, opts.logLevel, "text"),
	})
	if err != nil {
		return err
	}

	if err := table.Batch(func(b *view.Batch) error { return opts.apply(b) }); err != nil {
		return err
	}

	page := table.Snapshot()
	if opts.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(page); err != nil {
			return err
		}
	} else if err := render(stdout, page); err != nil {
		return err
	}

	if opts.export != "" {
		visible := make([]column.Column, len(page.Columns))
		for i, c := range page.Columns {
			visible[i] = c.Column
		}
		if err := source.ExportFile(opts.export, visible, table.Displayed()); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(stderr, "exported %d rows to %s\n", table.TotalRowCount(), opts.export)
	}
	return nil
}

// apply queues the refinements of the flags.
func (o options) apply(b *view.Batch) error {
	for _, s := range o.search {
		id, term, err := splitPair("--search", s)
		if err != nil {
			return err
		}
		if err := b.SetSearchTerm(id, term); err != nil {
			return err
		}
	}
	for _, f := range o.filter {
		id, value, err := splitPair("--filter", f)
		if err != nil {
			return err
		}
		if err := b.SetFilterValue(id, value); err != nil {
			return err
		}
	}
	if o.sort != "" {
		id, dir, _ := strings.Cut(o.sort, ":")
		toggles := 1
		switch strings.ToLower(dir) {
		case "", "asc":
		case "desc":
			toggles = 2
		default:
			return fmt.Errorf("--sort %q: direction must be asc or desc", o.sort)
		}
		for range toggles {
			if err := b.ToggleSort(id); err != nil {
				return err
			}
		}
	}
	if err := b.SetPageSize(o.pageSize); err != nil {
		return err
	}
	b.SetPage(o.page)
	return nil
}

func splitPair(flag, s string) (string, string, error) {
	id, value, ok := strings.Cut(s, "=")
	if !ok || id == "" {
		return "", "", fmt.Errorf("%s %q: want column=value", flag, s)
	}
	return id, value, nil
}

// render prints the page as a table followed by a paging line.
func render(w io.Writer, page view.Page) error {
	table := tablewriter.NewTable(w)

	header := make([]any, len(page.Columns))
	aligns := make([]tw.Align, len(page.Columns))
	for i, c := range page.Columns {
		label := c.Label
		if label == "" {
			label = c.ID
		}
		header[i] = label + arrow(c.Indicator)
		aligns[i] = twAlign(c.Align)
	}
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = aligns
	})
	table.Header(header...)

	for _, r := range page.Rows {
		line := make([]any, len(page.Columns))
		for i, c := range page.Columns {
			line[i] = source.FormatCell(c.Column, r[c.ID])
		}
		if err := table.Append(line...); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, pagingLine(page))
	return err
}

// pagingLine summarises the position of the page, e.g.
// "rows 6-10 of 12 (12 total) | page 2 of 3 | 1 [2] 3".
func pagingLine(page view.Page) string {
	if page.TotalRows == 0 {
		return fmt.Sprintf("no rows match (%d total)", page.RawRows)
	}

	buttons := make([]string, len(page.Window))
	for i, n := range page.Window {
		if n == page.Page {
			buttons[i] = fmt.Sprintf("[%d]", n)
		} else {
			buttons[i] = fmt.Sprint(n)
		}
	}
	return fmt.Sprintf("rows %d-%d of %d (%d total) | page %d of %d | %s",
		page.FirstIndex+1, page.FirstIndex+len(page.Rows), page.TotalRows, page.RawRows,
		page.Page, page.LastPage, strings.Join(buttons, " "))
}

func arrow(ind ordering.Indicator) string {
	switch ind {
	case ordering.IndicatorAscending:
		return " ^"
	case ordering.IndicatorDescending:
		return " v"
	}
	return ""
}

func twAlign(a column.Align) tw.Align {
	switch a {
	case column.AlignRight:
		return tw.AlignRight
	case column.AlignCenter:
		return tw.AlignCenter
	}
	return tw.AlignLeft
}
