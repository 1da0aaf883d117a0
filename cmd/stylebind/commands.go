package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gnana997/stylebind/pkg/bridge"
	"github.com/gnana997/stylebind/pkg/convert"
)

// selectionFlags are shared by commands that act on a selection.
type selectionFlags struct {
	ids     []string
	pattern string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.ids, "select", nil, "node ids to select (overrides the document's selection)")
	cmd.Flags().StringVar(&f.pattern, "pattern", "", `select nodes by name path glob, e.g. "Page 1/**/Button*"`)
	cmd.MarkFlagsMutuallyExclusive("select", "pattern")
}

// mapCommand prints the variable each style name maps to.
func (a *app) mapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "map STYLE_NAME...",
		Short: "Print the variable name for paint style names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv := a.cfg.convention()
			for _, name := range args {
				if !conv.Matches(name) {
					fmt.Fprintf(a.stdout, "%s\t(not convertible)\n", name)
					continue
				}
				fmt.Fprintf(a.stdout, "%s\t%s\n", name, conv.VariableName(name))
			}
			return nil
		},
	}
}

func (a *app) countCommand() *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:   "count DOCUMENT",
		Short: "Count convertible fill and stroke bindings under the selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.openWorkspace(args[0])
			if err != nil {
				return err
			}
			if err := w.selectNodes(sel.ids, sel.pattern); err != nil {
				return err
			}

			nodes, err := w.session.Selection(cmd.Context())
			if err != nil {
				return err
			}
			n, err := w.converter.Count(cmd.Context(), nodes)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, n)
			return nil
		},
	}
	sel.register(cmd)
	return cmd
}

func (a *app) convertCommand() *cobra.Command {
	var (
		sel    selectionFlags
		dryRun bool
		out    string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "convert DOCUMENT",
		Short: "Rebind paint styles under the selection to color variables",
		Long: `Rebind paint styles under the selection to color variables and save the document.

The document is rewritten in place unless --out is given. With --dry-run the
bindings that would change are listed and nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w, err := a.openWorkspace(args[0])
			if err != nil {
				return err
			}
			if err := w.selectNodes(sel.ids, sel.pattern); err != nil {
				return err
			}

			if dryRun {
				nodes, err := w.session.Selection(ctx)
				if err != nil {
					return err
				}
				res, err := w.converter.Convert(ctx, nodes, convert.Options{DryRun: true})
				if err != nil {
					return err
				}
				return a.printResult(res, asJSON)
			}

			var rec bridge.Recorder
			if err := a.newBridge(w, &rec, bridge.Options{}).Handle(ctx, bridge.Message{Type: bridge.TypeConvert}); err != nil {
				return err
			}

			switch m := rec.Last().(type) {
			case bridge.ErrorMessage:
				return errors.New(m.Message)
			case bridge.ConversionComplete:
				if asJSON {
					if err := a.writeJSON(m); err != nil {
						return err
					}
				} else {
					fmt.Fprintf(a.stdout, "converted: %d\nfailed: %d\n", m.Converted, m.Failed)
					for _, e := range m.Errors {
						fmt.Fprintf(a.stdout, "  %s\n", e)
					}
				}
			}

			if !w.session.Dirty() && out == "" {
				return nil
			}
			if err := w.session.SaveFile(out); err != nil {
				return err
			}
			a.logger.Info("document saved", "path", firstNonEmpty(out, w.session.Path()))
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the bindings that would change without writing")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the converted document here instead of in place")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (a *app) printResult(res *convert.Result, asJSON bool) error {
	if asJSON {
		return a.writeJSON(res)
	}
	for _, b := range res.Bindings {
		fmt.Fprintf(a.stdout, "%s\t%s\t%s\t%s -> %s\n", b.NodeID, b.NodeName, b.Channel, b.Style, b.Variable)
	}
	fmt.Fprintf(a.stdout, "converted: %d\nfailed: %d\n", res.Converted, res.Failed)
	for _, e := range res.Errors {
		fmt.Fprintf(a.stdout, "  %s\n", e)
	}
	return nil
}

func (a *app) variablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "variables DOCUMENT",
		Short: "List the color variables available as conversion targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.openWorkspace(args[0])
			if err != nil {
				return err
			}
			vars, err := w.vars.Get(cmd.Context())
			if err != nil {
				return err
			}

			names := make([]string, 0, len(vars))
			for name := range vars {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(a.stdout, "%s\t%s\n", name, vars[name].ID)
			}
			return nil
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "stylebind %s\n", version)
		},
	}
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
