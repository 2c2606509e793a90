// Command tabfit resizes the tab and slot edges of laser cut outlines
// to multiples of the material thickness.
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/paulhankin/tabfit/cmd/tabfit/tabfit"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// runFlags are the flags shared by adjust and inspect.
type runFlags struct {
	config    string
	thickness float64
	dpi       float64
	tolerance float64
	marks     []string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "TOML file with parameters and marks")
	cmd.Flags().Float64VarP(&f.thickness, "thickness", "t", 3, "material thickness (mm)")
	cmd.Flags().Float64Var(&f.dpi, "dpi", 96, "drawing units per inch")
	cmd.Flags().Float64Var(&f.tolerance, "tolerance", 0.5, "distance under which a curve counts as straight")
	cmd.Flags().StringSliceVarP(&f.marks, "mark", "m", nil, "mark a segment adjustable, as id or id=multiplier")
}

// build merges the config file with the flags that were set.
func (f *runFlags) build(cmd *cobra.Command) (*tabfit.Config, error) {
	cfg := tabfit.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = tabfit.LoadConfig(f.config); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("thickness") {
		cfg.MaterialThicknessMM = f.thickness
	}
	if cmd.Flags().Changed("dpi") {
		cfg.DPI = f.dpi
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.CurveTolerance = f.tolerance
	}
	marks, err := tabfit.ParseMarks(strings.Join(f.marks, ","))
	if err != nil {
		return nil, err
	}
	cfg.Marks = append(cfg.Marks, marks...)
	return cfg, cfg.Validate()
}

func newAdjustCmd() *cobra.Command {
	var (
		rf        runFlags
		out       string
		highlight bool
		flatten   bool
	)
	cmd := &cobra.Command{
		Use:   "adjust <file.svg>",
		Short: "Resize marked segments and write the adjusted drawing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rf.build(cmd)
			if err != nil {
				return err
			}
			cfg.In, cfg.Out = args[0], out
			if cmd.Flags().Changed("highlight") {
				cfg.Highlight = highlight
			}
			if cmd.Flags().Changed("flatten") {
				cfg.Flatten = flatten
			}
			l := loggerFromContext(cmd.Context())
			res, err := tabfit.Convert(cfg, l)
			if err != nil {
				return err
			}
			if len(res.Warnings) > 0 {
				l.Warn("finished with warnings", "batch", res.ID, "warnings", len(res.Warnings))
			}
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <file>_adjusted.svg)")
	cmd.Flags().BoolVar(&highlight, "highlight", false, "color adjustable segments")
	cmd.Flags().BoolVar(&flatten, "flatten", false, "write curves as polylines")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var (
		rf     runFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <file.svg>",
		Short: "List the segments and shapes of a drawing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rf.build(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			rep, err := tabfit.Inspect(f, cfg, loggerFromContext(cmd.Context()))
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			return tabfit.WriteReport(cmd.OutOrStdout(), rep)
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the report as json")
	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		addr   string
		config string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve adjustments over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := tabfit.DefaultConfig()
			if config != "" {
				var err error
				if defaults, err = tabfit.LoadConfig(config); err != nil {
					return err
				}
			}
			l := loggerFromContext(cmd.Context())
			app := tabfit.NewServer(&tabfit.ServerConfig{
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
				Defaults:     defaults,
			}, l)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			go func() {
				<-ctx.Done()
				if err := app.Shutdown(); err != nil {
					l.Error("shutdown", "err", err)
				}
			}()
			l.Info("starting server", "addr", addr)
			return app.Listen(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":3000", "listen address")
	cmd.Flags().StringVarP(&config, "config", "c", "", "TOML file with default parameters and marks")
	return cmd
}

func execute() error {
	var verbose bool
	root := &cobra.Command{
		Use:          "tabfit",
		Short:        "Fit laser cut tabs and slots to the material thickness",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.AddCommand(newAdjustCmd(), newInspectCmd(), newServeCmd())
	return root.ExecuteContext(context.Background())
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
