package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vellumlang/vellum/grammarlang"
	"github.com/vellumlang/vellum/syntax"
)

func init() {
	cmd := &cobra.Command{
		Use:     "describe <grammar file path>",
		Short:   "Print a grammar's compiled productions and states in readable form",
		Example: `  vellum describe grammar.vellum`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	if err := loadProjectConfig(cmd); err != nil {
		return err
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("cannot read grammar file %s: %w", args[0], err)
	}
	syn, err := grammarlang.Compile(args[0], src)
	if err != nil {
		return err
	}

	writeDescription(os.Stdout, syn)
	return nil
}

// writeDescription renders syn's productions and parser states, grounded
// on vartan/cmd/vartan's describe/show templates but walking the fields
// syntax.Syntax actually exposes -- there is no persisted item-set kernel
// here (spec.md's Syntax only keeps the collapsed Shift/Reduce/Contexts
// tables per state, not the LR(1) items that produced them), so each
// state's report is its transition table rather than a kernel dump.
func writeDescription(w io.Writer, syn *syntax.Syntax) {
	fmt.Fprintf(w, "# Productions\n\n")
	for _, f := range syn.Formulas {
		fmt.Fprintf(w, "%4d %s\n", f.ID, formulaString(syn, f))
	}

	fmt.Fprintf(w, "\n# Contexts\n\n")
	for i, c := range syn.Lex.Contexts {
		fmt.Fprintf(w, "%4d %s\n", i, c)
	}

	fmt.Fprintf(w, "\n# States\n")
	for i, ps := range syn.States {
		fmt.Fprintf(w, "\n## State %d\n\n", i)

		var ctxIDs []int
		for c := range ps.Contexts {
			ctxIDs = append(ctxIDs, c)
		}
		sort.Ints(ctxIDs)
		if len(ctxIDs) > 0 {
			var names []string
			for _, c := range ctxIDs {
				if c >= 0 && c < len(syn.Lex.Contexts) {
					names = append(names, syn.Lex.Contexts[c])
				}
			}
			fmt.Fprintf(w, "contexts: %s\n", strings.Join(names, ", "))
		}

		for _, sym := range sortedSymbols(ps.Shift) {
			fmt.Fprintf(w, "shift  %4d on %s\n", ps.Shift[sym], syn.SymbolName(sym))
		}
		for _, sym := range sortedSymbols(ps.Reduce) {
			fmt.Fprintf(w, "reduce %4d on %s\n", ps.Reduce[sym], syn.SymbolName(sym))
		}
	}
}

func formulaString(syn *syntax.Syntax, f *syntax.Formula) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", syn.SymbolName(f.Head))
	if f.Form != "" {
		fmt.Fprintf(&b, ".%s", f.Form)
	}
	b.WriteString(" ->")
	if len(f.Body) == 0 {
		b.WriteString(" %empty")
	}
	for _, bs := range f.Body {
		fmt.Fprintf(&b, " %s", syn.SymbolName(bs.Sym))
		if bs.Attr != "" {
			fmt.Fprintf(&b, "@%s", bs.Attr)
		}
	}
	return b.String()
}

func sortedSymbols(m map[syntax.Symbol]int) []syntax.Symbol {
	out := make([]syntax.Symbol, 0, len(m))
	for sym := range m {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
