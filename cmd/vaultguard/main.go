package main

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/org/vaultguard/internal/breach"
	"github.com/org/vaultguard/internal/engine"
	"github.com/org/vaultguard/internal/report"
	"github.com/org/vaultguard/internal/strength"
	"github.com/org/vaultguard/pkg/models"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "vaultguard",
	Short: "VaultGuard CLI",
	Long:  "Generate passwords, score their strength and audit password vaults.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadConfig()
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format: table, json, raw")
	rootCmd.PersistentFlags().StringVar(&outputField, "field", "", "Print only this field (use with --format=raw)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(strengthCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(domainsCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(digestCmd())
	rootCmd.AddCommand(configCmd())
}

// newLocalEngine builds an in-process engine. Breach lookups go to the
// configured range API only when enabled.
func newLocalEngine(breachCheck bool) (*engine.Engine, error) {
	opts := engine.Options{FingerprintSecret: cfg.FingerprintSecret}
	if breachCheck {
		opts.Checker = breach.NewHIBPClient(cfg.BreachURL, "vaultguard-cli", 10*time.Second)
		opts.DomainChecker = breach.NewHIBPDomainClient(cfg.DomainURL, "vaultguard-cli", os.Getenv("HIBP_API_KEY"), 10*time.Second)
	}
	return engine.New(opts)
}

// --- generate ---

func generateCmd() *cobra.Command {
	policy := models.DefaultPolicy()
	var noUpper, noLower, noNumbers, noSymbols bool
	var count int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate random passwords",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy.IncludeUppercase = !noUpper
			policy.IncludeLowercase = !noLower
			policy.IncludeNumbers = !noNumbers
			policy.IncludeSymbols = !noSymbols

			eng, err := newLocalEngine(false)
			if err != nil {
				return err
			}
			passwords, err := eng.GenerateBatch(policy, count)
			if err != nil {
				printError(err.Error())
				return nil
			}
			if outputFormat == "raw" || outputFormat == "table" {
				for _, pw := range passwords {
					fmt.Println(pw)
				}
				return nil
			}
			analysis := eng.Strength(passwords[0])
			printResult(map[string]any{
				"passwords": passwords,
				"score":     analysis.Score,
				"label":     analysis.Label,
				"entropy":   analysis.Entropy,
			})
			return nil
		},
	}
	cmd.Flags().IntVarP(&policy.Length, "length", "l", policy.Length, "Password length")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of passwords")
	cmd.Flags().BoolVar(&noUpper, "no-upper", false, "Exclude uppercase letters")
	cmd.Flags().BoolVar(&noLower, "no-lower", false, "Exclude lowercase letters")
	cmd.Flags().BoolVar(&noNumbers, "no-numbers", false, "Exclude digits")
	cmd.Flags().BoolVar(&noSymbols, "no-symbols", false, "Exclude symbols")
	cmd.Flags().BoolVar(&policy.ExcludeAmbiguous, "exclude-ambiguous", false, "Exclude look-alike characters (il1Lo0O)")
	cmd.Flags().StringVar(&policy.CustomCharacters, "custom", "", "Extra characters to allow")
	cmd.Flags().StringVar(&policy.ExcludeCharacters, "exclude", "", "Characters to never use")
	return cmd
}

// --- strength ---

func strengthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strength [password]",
		Short: "Score a password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			breachCheck, _ := cmd.Flags().GetBool("breach-check")
			var pw string
			if len(args) > 0 {
				pw = args[0]
			} else {
				fmt.Fprint(os.Stderr, "Password: ")
				scanner := bufio.NewScanner(os.Stdin)
				scanner.Scan()
				pw = strings.TrimRight(scanner.Text(), "\r\n")
			}
			if pw == "" {
				printError("password is required")
				return nil
			}

			eng, err := newLocalEngine(breachCheck)
			if err != nil {
				return err
			}
			analysis := eng.Strength(pw)
			result, err := toMap(analysis)
			if err != nil {
				return err
			}
			msgs := []any{}
			for _, r := range strength.Recommendations(analysis) {
				msgs = append(msgs, r.Message)
			}
			result["recommendations"] = msgs
			if breachCheck {
				status := eng.CheckBreach(cmd.Context(), pw)
				result["breach"] = map[string]any{"checked": status.Checked, "breached": status.Breached, "count": status.Count}
			}
			printResult(result)
			return nil
		},
	}
	cmd.Flags().Bool("breach-check", false, "Look the password up in the breach corpus (k-anonymity)")
	return cmd
}

// --- audit ---

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <file>",
		Short: "Audit a vault export (JSON or YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			breachCheck, _ := cmd.Flags().GetBool("breach-check")
			reportType, _ := cmd.Flags().GetString("report")
			submit, _ := cmd.Flags().GetBool("submit")
			charts, _ := cmd.Flags().GetBool("charts")

			entries, err := loadEntries(args[0])
			if err != nil {
				printError(err.Error())
				return nil
			}

			if submit {
				result, err := newClient().post("/v1/audits", map[string]any{"entries": entries})
				if err != nil {
					printError(err.Error())
					return nil
				}
				data, _ := result["data"].(map[string]any)
				printSuccess(fmt.Sprintf("Audit %v stored", data["id"]))
				if va, ok := data["assessment"].(map[string]any); ok {
					printResult(summaryOf(va))
				}
				return nil
			}

			eng, err := newLocalEngine(breachCheck)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			rec, err := eng.Audit(ctx, entries)
			if err != nil {
				printError(err.Error())
				return nil
			}

			if reportType == "" {
				va, err := toMap(rec.Assessment)
				if err != nil {
					return err
				}
				printResult(summaryOf(va))
				return nil
			}
			rep, err := report.FormatWith(rec.Assessment, rec.Entries, reportType, report.Options{IncludeCharts: charts})
			if err != nil {
				printError(err.Error())
				return nil
			}
			if outputFormat == "table" {
				return report.Render(os.Stdout, rep)
			}
			printValue(rep)
			return nil
		},
	}
	cmd.Flags().Bool("breach-check", false, "Check passwords against the breach corpus (k-anonymity)")
	cmd.Flags().String("report", "", "Print a report: executive, technical, user-friendly")
	cmd.Flags().Bool("submit", false, "Send the vault to the server and store the audit")
	cmd.Flags().Bool("charts", false, "Attach chart data to the report")
	return cmd
}

// --- domains ---

func domainsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains <file>",
		Short: "Check the sites of a vault export against known data breaches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, _ := cmd.Flags().GetBool("remote")
			entries, err := loadEntries(args[0])
			if err != nil {
				printError(err.Error())
				return nil
			}
			domains := breach.EntryDomains(entries)
			if len(domains) == 0 {
				printError("no site in the vault looks like a domain")
				return nil
			}

			var result map[string]any
			if remote {
				resp, err := newClient().post("/v1/domains/check", map[string]any{"domains": domains})
				if err != nil {
					printError(err.Error())
					return nil
				}
				result, _ = resp["data"].(map[string]any)
			} else {
				eng, err := newLocalEngine(true)
				if err != nil {
					return err
				}
				rep, err := eng.CheckDomains(cmd.Context(), domains)
				if err != nil {
					printError(err.Error())
					return nil
				}
				if result, err = toMap(rep); err != nil {
					return err
				}
			}

			if outputFormat != "table" || result == nil {
				printResult(result)
				return nil
			}
			rows, _ := result["results"].([]any)
			printRows(rows, "domain", "checked", "has_breaches", "breach_count")
			fmt.Printf("\n%v of %v domains have known breaches\n", result["domains_with_breaches"], result["domains_checked"])
			return nil
		},
	}
	cmd.Flags().Bool("remote", false, "Ask the server instead of querying the breach directory directly")
	return cmd
}

// summaryOf picks the headline fields of a vault assessment.
func summaryOf(va map[string]any) map[string]any {
	out := map[string]any{}
	for _, k := range []string{"total_entries", "security_score", "risk_score", "risk_label", "next_review_date"} {
		out[k] = va[k]
	}
	if m, ok := va["metrics"].(map[string]any); ok {
		out["metrics"] = map[string]any{
			"weak":      m["weak_count"],
			"breached":  m["breached_count"],
			"duplicate": m["duplicate_count"],
			"stale":     m["stale_count"],
			"unchecked": m["unchecked_count"],
		}
	}
	if actions, ok := va["priority_actions"].([]any); ok {
		msgs := make([]any, 0, len(actions))
		for _, a := range actions {
			if rec, ok := a.(map[string]any); ok {
				msgs = append(msgs, rec["message"])
			}
		}
		out["priority_actions"] = msgs
	}
	return out
}

// --- history / report / digest ---

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored audits, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			label, _ := cmd.Flags().GetString("label")
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			if label != "" {
				q.Set("label", strings.ToUpper(label))
			}
			result, err := newClient().get("/v1/audits?" + q.Encode())
			if err != nil {
				printError(err.Error())
				return nil
			}
			if outputFormat != "table" {
				printResult(result)
				return nil
			}
			rows, _ := result["data"].([]any)
			printRows(rows, "id", "created_at", "total_entries", "security_score", "risk_label")
			if trend, ok := result["trend"].(map[string]any); ok {
				fmt.Printf("\ntrend: %v (average change %v)\n", trend["trend"], trend["average_improvement"])
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Number of audits to list")
	cmd.Flags().String("label", "", "Only audits with this risk label")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Show a report for a stored audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportType, _ := cmd.Flags().GetString("type")
			charts, _ := cmd.Flags().GetBool("charts")
			q := url.Values{}
			q.Set("format", reportType)
			if charts {
				q.Set("charts", "true")
			}
			path := "/v1/audits/" + url.PathEscape(args[0]) + "/report?"
			client := newClient()
			if outputFormat == "table" {
				q.Set("render", "text")
				text, err := client.getText(path + q.Encode())
				if err != nil {
					printError(err.Error())
					return nil
				}
				fmt.Print(text)
				return nil
			}
			result, err := client.get(path + q.Encode())
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}
	cmd.Flags().String("type", report.FormatExecutive, "Report type: executive, technical, user-friendly")
	cmd.Flags().Bool("charts", false, "Include strength breakdown and score trend data")
	return cmd
}

func digestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest <id>",
		Short: "Show the remediation plan and trend digest for a stored audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, _ := cmd.Flags().GetString("period")
			timeLimited, _ := cmd.Flags().GetBool("time-limited")
			advanced, _ := cmd.Flags().GetBool("advanced")
			q := url.Values{}
			q.Set("period", period)
			q.Set("time_limited", strconv.FormatBool(timeLimited))
			q.Set("advanced", strconv.FormatBool(advanced))
			result, err := newClient().get("/v1/audits/" + url.PathEscape(args[0]) + "/digest?" + q.Encode())
			if err != nil {
				printError(err.Error())
				return nil
			}
			data, _ := result["data"].(map[string]any)
			if outputFormat != "table" || data == nil {
				printResult(result)
				return nil
			}
			if digest, ok := data["digest"].(map[string]any); ok {
				fmt.Println(digest["summary"])
				fmt.Println()
			}
			if plan, ok := data["plan"].(map[string]any); ok {
				for _, bucket := range []string{"immediate", "this_week", "this_month", "ongoing"} {
					tasks, _ := plan[bucket].([]any)
					if len(tasks) == 0 {
						continue
					}
					fmt.Println(strings.ToUpper(strings.ReplaceAll(bucket, "_", " ")))
					printRows(tasks, "title", "severity", "estimated_minutes", "description")
					fmt.Println()
				}
				if est, ok := plan["estimated_time_required"].(map[string]any); ok {
					printResult(map[string]any{"estimated_time": est})
				}
			}
			return nil
		},
	}
	cmd.Flags().String("period", report.PeriodMonthly, "Digest period: weekly, monthly, quarterly")
	cmd.Flags().Bool("time-limited", false, "Cap each task estimate at 15 minutes")
	cmd.Flags().Bool("advanced", false, "Use technical task descriptions")
	return cmd
}

// --- config ---

func configCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Manage CLI configuration"}

	setAddr := &cobra.Command{
		Use:   "set-address <url>",
		Short: "Set the server address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Address = strings.TrimRight(args[0], "/")
			if err := saveConfig(); err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess("Address saved to " + configPath())
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			printResult(map[string]any{
				"address":     cfg.Address,
				"tls_ca_cert": cfg.TLSCACert,
				"breach_url":  cfg.BreachURL,
				"domain_url":  cfg.DomainURL,
				"config_file": configPath(),
			})
			return nil
		},
	}

	cmd.AddCommand(setAddr, show)
	return cmd
}
