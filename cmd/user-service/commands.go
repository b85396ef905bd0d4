package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"user-service/internal/app"
	"user-service/internal/shared"
)

var errCatalogCheck = errors.New("error catalog check failed")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "user-service",
		Short:        "User registration service",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runServe,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP service (default)",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		newCatalogCmd(),
	)
	return root
}

func runServe(*cobra.Command, []string) error {
	a, err := app.New()
	if err != nil {
		return err
	}
	return a.Run()
}

// catalogFlags holds catalog path overrides. Empty values fall back to
// GLOBAL_ERROR_FILE_PATH and SERVICE_ERROR_FILE_PATH.
type catalogFlags struct {
	global  string
	service string
}

func (f *catalogFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.global, "global", "", "global catalog path (default $GLOBAL_ERROR_FILE_PATH or error.json)")
	cmd.Flags().StringVar(&f.service, "service", "", "service catalog path (default $SERVICE_ERROR_FILE_PATH or services/user/error.json)")
}

func (f *catalogFlags) path(kind shared.CatalogKind) string {
	p := f.service
	if kind == shared.GlobalCatalog {
		p = f.global
	}
	if p == "" {
		p = shared.PathFromEnv(kind)
	}
	return p
}

func (f *catalogFlags) catalog(kind shared.CatalogKind) *shared.Catalog {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return shared.NewCatalog(kind, f.path(kind), shared.WithLogger(quiet))
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect error message catalogs",
	}
	cmd.AddCommand(newCatalogCheckCmd(), newCatalogShowCmd())
	return cmd
}

func newCatalogCheckCmd() *cobra.Command {
	var flags catalogFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the global and service error catalogs",
		Long: `Reads both catalogs and reports read and parse failures, keys that are not
numeric codes, empty messages and codes stored in the wrong catalog.
Exits non-zero when any problem is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			ok := true
			for _, kind := range []shared.CatalogKind{shared.GlobalCatalog, shared.ServiceCatalog} {
				if !checkCatalog(out, flags.catalog(kind)) {
					ok = false
				}
			}
			if !ok {
				return errCatalogCheck
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func checkCatalog(out io.Writer, c *shared.Catalog) bool {
	report, err := c.Report()
	if err != nil {
		fmt.Fprintf(out, "%s catalog %s: FAIL\n  %v\n", c.Kind(), c.Path(), err)
		return false
	}

	status := "ok"
	if !report.OK() {
		status = "FAIL"
	}
	fmt.Fprintf(out, "%s catalog %s: %d entries, %s\n", report.Kind, report.Path, report.Entries, status)
	if report.ParseErr != nil {
		fmt.Fprintf(out, "  parse error: %v\n", report.ParseErr)
	}
	for _, k := range report.InvalidKeys {
		fmt.Fprintf(out, "  key %q is not a canonical decimal code\n", k)
	}
	for _, code := range report.EmptyMessages {
		fmt.Fprintf(out, "  code %d has an empty message\n", code)
	}
	for _, code := range report.Misplaced {
		fmt.Fprintf(out, "  code %d does not belong in the %s catalog\n", code, report.Kind)
	}
	return report.OK()
}

func newCatalogShowCmd() *cobra.Command {
	var flags catalogFlags
	cmd := &cobra.Command{
		Use:   "show <code>",
		Short: "Print the payload an error code resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("code %q is not a number", args[0])
			}
			reg := shared.NewRegistry(flags.catalog(shared.GlobalCatalog), flags.catalog(shared.ServiceCatalog))
			code := shared.Code(n)
			if err := reg.Catalog(catalogKind(code)).Load(); err != nil {
				return err
			}
			body, err := json.Marshal(reg.New(code))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func catalogKind(code shared.Code) shared.CatalogKind {
	if code.IsGlobal() {
		return shared.GlobalCatalog
	}
	return shared.ServiceCatalog
}
