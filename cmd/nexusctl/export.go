package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type exportOptions struct {
	format    string
	out       string
	search    string
	filters   map[string]string
	tenant    string
	delimiter string
}

func newExportCmd() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export <resource>",
		Short: "Export a resource's filtered records as CSV or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeFn, err := connect()
			if err != nil {
				return err
			}
			defer closeFn()

			def, err := cfg.Resources.Lookup(args[0])
			if err != nil {
				return err
			}
			sources, err := database.NewSources(cfg.DB)
			if err != nil {
				return err
			}
			src, ok := sources.Get(def.Name)
			if !ok {
				return fmt.Errorf("no data source for %s", def.Name)
			}

			records, err := src.List(cmd.Context())
			if err != nil {
				return err
			}
			p := def.Predicate(opts.search, opts.filters)
			if opts.tenant != "" {
				p = def.Scoped(p, opts.tenant)
			}
			records = listing.Filter(records, p)

			path := opts.out
			if path == "" {
				path = def.ExportFilename(time.Now(), opts.format)
			}
			if err := writeExport(cmd.OutOrStdout(), path, def, records, opts); err != nil {
				return err
			}
			cfg.Log.Info("Records exported", zap.String("resource", def.Name), zap.String("path", path), zap.Int("records", len(records)))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "csv", "csv or xlsx")
	f.StringVarP(&opts.out, "out", "o", "", `output file, "-" for stdout (default <filename>_<date>.<format>)`)
	f.StringVar(&opts.search, "search", "", "free-text search")
	f.StringToStringVar(&opts.filters, "filter", nil, "categorical filter as name=value, repeatable")
	f.StringVar(&opts.tenant, "school", "", "restrict to one school id")
	f.StringVar(&opts.delimiter, "delimiter", ",", "CSV field delimiter")
	return cmd
}

func writeExport(stdout io.Writer, path string, def *listing.Definition, records []listing.Record, opts exportOptions) error {
	var buf bytes.Buffer
	switch opts.format {
	case "csv":
		delimiter := []rune(opts.delimiter)
		if len(delimiter) != 1 {
			return fmt.Errorf("delimiter must be a single character, got %q", opts.delimiter)
		}
		text, err := listing.ExportDelimited(records, def.Mapping(), delimiter[0])
		if err != nil {
			return err
		}
		buf.WriteString(text)
	case "xlsx":
		if err := listing.WriteXLSX(&buf, records, def.Mapping(), def.Title); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	if path == "-" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
