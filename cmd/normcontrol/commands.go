package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/normcontrol/internal/config"
	"github.com/dgallion1/normcontrol/internal/logging"
	"github.com/dgallion1/normcontrol/internal/report"
	"github.com/dgallion1/normcontrol/internal/rules"
	"github.com/dgallion1/normcontrol/internal/service"
)

var version = "0.1.0"

// app holds state shared by subcommands, filled in by the root's
// PersistentPreRunE.
type app struct {
	out, errOut io.Writer

	configPath string
	rulesDir   string
	format     string
	strict     bool

	cfg    config.Config
	log    *slog.Logger
	closer io.Closer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "normcontrol",
		Short: "Academic document normcontrol",
		Long: `normcontrol checks DOCX and LaTeX theses, course works and practice
reports against the formatting and structure rules of their document type.

It checks:
  - Required chapters, sections and introduction keywords
  - Figure, table, appendix and bibliography cross-references
  - List punctuation
  - Font sizes (DOCX) and style-file conformance (LaTeX)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default settings.json when present)")
	pf.StringVar(&a.rulesDir, "rules-dir", "", "rules directory (overrides the config)")
	pf.StringVarP(&a.format, "format", "f", "", "output format")

	rootCmd.AddCommand(listDocTypesCmd(a))
	rootCmd.AddCommand(ruleTypesCmd(a))
	rootCmd.AddCommand(getRulesCmd(a))
	rootCmd.AddCommand(updateRuleCmd(a))
	rootCmd.AddCommand(updateRuleAllCmd(a))
	rootCmd.AddCommand(validateDocxCmd(a))
	rootCmd.AddCommand(validateLatexCmd(a))
	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.rulesDir != "" {
		cfg.RulesDir = a.rulesDir
	}
	a.cfg = cfg
	// Logs go to stderr so reports on stdout stay machine-readable.
	a.log, a.closer, err = logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  "text",
		File:    cfg.LogFile,
		Console: a.errOut,
	})
	return err
}

func (a *app) store() *rules.Store {
	return rules.NewStore(a.cfg.RulesDir, a.log)
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func listDocTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list-doc-types",
		Short: "List document types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printOptions(rules.DocTypes())
		},
	}
}

func ruleTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rule-types",
		Short: "List rule categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printOptions(rules.RuleTypes())
		},
	}
}

func (a *app) printOptions(opts []rules.Option) error {
	if a.format == "json" {
		return a.writeJSON(opts)
	}
	for _, o := range opts {
		fmt.Fprintf(a.out, "%2d  %s\n", o.Value, strings.ToLower(o.Name))
	}
	return nil
}

func getRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get-rules <doc_type>",
		Short: "Print the rules of a document type",
		Long: `Print the full rule file of a document type.

Examples:
  normcontrol get-rules diploma
  normcontrol get-rules course_work -f yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := rules.ParseDocType(args[0])
			if err != nil {
				return err
			}
			tree, err := a.store().Raw(dt)
			if err != nil {
				return err
			}
			switch a.format {
			case "", "json":
				return a.writeJSON(tree)
			case "yaml", "yml":
				enc := yaml.NewEncoder(a.out)
				enc.SetIndent(2)
				if err := enc.Encode(tree); err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (json, yaml)", a.format)
			}
		},
	}
}

func updateRuleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update-rule <doc_type> <rule_key> <new_value>",
		Short: "Update one rule of a document type",
		Long: `Update one rule of a document type. The value is converted to the
type the rule key declares: numbers, strings, or lists given as JSON
arrays or comma-separated values.

Examples:
  normcontrol update-rule diploma common_rules.margins.top 20
  normcontrol update-rule diploma structure_rules.introduction_keywords "Актуальность, Цель работы"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := rules.ParseDocType(args[0])
			if err != nil {
				return err
			}
			val, err := a.store().Update(dt, args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Правило %s для %s успешно обновлено на %s\n", args[1], dt, val)
			return nil
		},
	}
}

func updateRuleAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update-rule-all <rule_key> <new_value>",
		Short: "Update one rule for every document type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, failures := a.store().UpdateAll(args[0], args[1])
			fmt.Fprintln(a.out, "Обновление завершено.")
			names := make([]string, 0, len(updated))
			for _, dt := range updated {
				names = append(names, string(dt))
			}
			fmt.Fprintf(a.out, "Обновлены: %s\n", strings.Join(names, ", "))
			if len(failures) > 0 {
				failed := make([]string, 0, len(failures))
				for dt, err := range failures {
					failed = append(failed, fmt.Sprintf("%s: %v", dt, err))
				}
				sort.Strings(failed)
				fmt.Fprintln(a.out, "Ошибки:")
				for _, f := range failed {
					fmt.Fprintf(a.out, "  %s\n", f)
				}
			}
			if len(updated) == 0 {
				return fmt.Errorf("rule %s was not updated for any document type", args[0])
			}
			return nil
		},
	}
}

func validateDocxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-docx <file.docx> <doc_type>",
		Short: "Check a DOCX document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.EqualFold(filepath.Ext(args[0]), ".docx") {
				return fmt.Errorf("expected a .docx file, got %s", args[0])
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}
			return a.validate(cmd, args[1], service.Document{Filename: filepath.Base(args[0]), Data: data})
		},
	}
	cmd.Flags().BoolVar(&a.strict, "strict", false, "exit with an error when violations are found")
	return cmd
}

func validateLatexCmd(a *app) *cobra.Command {
	var styPath string
	cmd := &cobra.Command{
		Use:   "validate-latex <file.tex> <doc_type>",
		Short: "Check a LaTeX document",
		Long: `Check a LaTeX document. With --sty the style file is compared
line by line against the configured reference style.

Examples:
  normcontrol validate-latex thesis.tex diploma --sty template.sty
  normcontrol validate-latex thesis.tex course_work -f markdown`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !strings.EqualFold(filepath.Ext(args[0]), ".tex") {
				return fmt.Errorf("expected a .tex file, got %s", args[0])
			}
			doc := service.Document{Filename: filepath.Base(args[0])}
			var err error
			if doc.Data, err = os.ReadFile(args[0]); err != nil {
				return fmt.Errorf("read document: %w", err)
			}
			if styPath != "" {
				if !strings.EqualFold(filepath.Ext(styPath), ".sty") {
					return fmt.Errorf("expected a .sty file, got %s", styPath)
				}
				if doc.Sty, err = os.ReadFile(styPath); err != nil {
					return fmt.Errorf("read style file: %w", err)
				}
			}
			return a.validate(cmd, args[1], doc)
		},
	}
	cmd.Flags().StringVar(&styPath, "sty", "", "style file to compare with the reference style")
	cmd.Flags().BoolVar(&a.strict, "strict", false, "exit with an error when violations are found")
	return cmd
}

func (a *app) validate(cmd *cobra.Command, docType string, doc service.Document) error {
	dt, err := rules.ParseDocType(docType)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(a.format)
	if err != nil {
		return err
	}
	opts := service.Options{Dedup: a.cfg.Dedup}
	if doc.Sty != nil {
		opts.ReferenceSty = a.cfg.ReferenceSty
	}
	svc, err := service.New(a.store(), opts, a.log)
	if err != nil {
		return err
	}
	rep, err := svc.Check(cmd.Context(), dt, doc)
	if err != nil {
		return err
	}
	if err := report.Render(a.out, format, rep); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if a.strict && !rep.Valid {
		return fmt.Errorf("%d violations found", len(rep.Errors))
	}
	return nil
}
