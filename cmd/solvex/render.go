package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/muazify/solvex/internal/config"
)

// renderOutcome writes one solved equation to w. Parse failures come
// back as errors so the process exits nonzero without printing a
// result block.
func renderOutcome(w io.Writer, out outcome, opts config.Output) error {
	if out.parseErr != nil {
		return out.parseErr
	}
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	switch out.Method {
	case methodExact:
		fmt.Fprintln(w, "Exact solution(s):")
		if useTable(opts) {
			fmt.Fprintln(w, exactTable(out, opts.LaTeX))
		} else {
			for _, sol := range out.Exact {
				fmt.Fprintf(w, "  x = %s", sol.Value)
				if approxDiffers(sol) {
					fmt.Fprintf(w, "  (≈ %.8f)", sol.Approx)
				}
				if opts.LaTeX {
					fmt.Fprintf(w, "  [%s]", sol.LaTeX)
				}
				fmt.Fprintln(w)
			}
		}
	case methodApproximate:
		fmt.Fprintf(w, "Approximate solution: x ≈ %.8f\n", out.Numeric.Root)
		if out.Message != "" {
			fmt.Fprintf(w, "  note: %s (f(x) = %.2e)\n", out.Message, out.Numeric.Residual)
		}
	case methodNone:
		fmt.Fprintln(w, "No real solutions.")
	case methodIdentity:
		fmt.Fprintln(w, "Identity: every real x satisfies the equation.")
	case methodFailed:
		return fmt.Errorf("%s", out.Message)
	}
	return nil
}

func useTable(opts config.Output) bool {
	if opts.Plain {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func exactTable(out outcome, withLaTeX bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := table.Row{"#", "x", "≈"}
	if withLaTeX {
		header = append(header, "LaTeX")
	}
	tw.AppendHeader(header)
	for i, sol := range out.Exact {
		row := table.Row{strconv.Itoa(i + 1), sol.Value, fmt.Sprintf("%.8f", sol.Approx)}
		if withLaTeX {
			row = append(row, sol.LaTeX)
		}
		tw.AppendRow(row)
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignRight},
	})
	return tw.Render()
}

// approxDiffers reports whether the decimal column adds information
// over the exact rendering (it does not for small integers).
func approxDiffers(sol exactSolution) bool {
	if i, err := strconv.ParseInt(sol.Value, 10, 64); err == nil {
		return float64(i) != sol.Approx
	}
	return true
}
