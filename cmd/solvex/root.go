package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muazify/solvex/internal/config"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag  string
		guessFlag   float64
		jsonFlag    bool
		plainFlag   bool
		latexFlag   bool
		verboseFlag bool
	)

	rootCmd := &cobra.Command{
		Use:           "solvex [equation]",
		Short:         "Solve an equation for x, exactly or approximately",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verboseFlag)

			cfg, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("guess") {
				cfg.Solver.InitialGuess = guessFlag
			}
			if jsonFlag {
				cfg.Output.JSON = true
			}
			if plainFlag {
				cfg.Output.Plain = true
			}
			if latexFlag {
				cfg.Output.LaTeX = true
			}

			var line string
			if len(args) == 1 {
				line = args[0]
			} else {
				printBanner(cmd.OutOrStdout())
				fmt.Fprint(cmd.OutOrStdout(), "Enter equation: ")
				raw, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				line = strings.TrimSpace(raw)
				if line == "" {
					return fmt.Errorf("no equation entered")
				}
			}

			out := solveLine(line, cfg, logger)
			return renderOutcome(cmd.OutOrStdout(), out, cfg.Output)
		},
	}

	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (TOML)")
	rootCmd.Flags().Float64VarP(&guessFlag, "guess", "g", 1.0, "Initial guess for the numerical fallback")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the result as JSON")
	rootCmd.Flags().BoolVar(&plainFlag, "plain", false, "Plain line output instead of a table")
	rootCmd.Flags().BoolVar(&latexFlag, "latex", false, "Include LaTeX forms of exact solutions")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	return rootCmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "------------------------------------")
	fmt.Fprintln(w, "Equation Solver for 'x'")
	fmt.Fprintln(w, "------------------------------------")
	fmt.Fprintln(w, "Enter the equation:")
	fmt.Fprintln(w, "  - Use 'x' as the variable.")
	fmt.Fprintln(w, "  - Use '**' for exponentiation (e.g. x**2 for x squared).")
	fmt.Fprintln(w, "  - Functions: sqrt(), sin(), exp(), log(), factorial(), ...")
	fmt.Fprintln(w, "    (bare or prefixed: sympy.sqrt(x), math.factorial(3))")
	fmt.Fprintln(w, "  - Examples:")
	fmt.Fprintln(w, "      1 + x = 4")
	fmt.Fprintln(w, "      x**2 - 5*x + 6 = 0")
	fmt.Fprintln(w, "      sqrt(x) - 5 = 0")
	fmt.Fprintln(w, "      sqrt((x+4)**5 - x + factorial(3)) = 50")
	fmt.Fprintln(w, "------------------------------------")
}
