package main

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/aapotheosis/rrspgo/internal/domain"
	"github.com/aapotheosis/rrspgo/internal/optimizer"
	"github.com/aapotheosis/rrspgo/internal/output"
	"github.com/aapotheosis/rrspgo/internal/taxdata"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "rrspgo %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(os.Stdout, info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "rrspgo",
	Short: "RRSP Loan Planner CLI",
	Long:  "Computes the tax impact of an RRSP contribution loan and recommends an optimal loan amount",
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend an RRSP loan amount for an optimization goal",
	Run: func(cmd *cobra.Command, args []string) {
		req, opts := requestFromFlags(cmd)

		goalName, _ := cmd.Flags().GetString("goal")
		req.Goal = domain.Goal(goalName)
		if ceiling, _ := cmd.Flags().GetString("ceiling"); ceiling != "" {
			c := mustDecimal("ceiling", ceiling)
			req.Ceiling = &c
		}

		runRequest(cmd, req, opts)
	},
}

var whatifCmd = &cobra.Command{
	Use:   "whatif",
	Short: "Report the tax impact of a specific loan amount",
	Run: func(cmd *cobra.Command, args []string) {
		req, opts := requestFromFlags(cmd)

		loanFlag, _ := cmd.Flags().GetString("loan")
		loan := mustDecimal("loan", loanFlag)
		req.CandidateLoanAmount = &loan

		runRequest(cmd, req, opts)
	},
}

var bracketsCmd = &cobra.Command{
	Use:   "brackets",
	Short: "Print the combined federal and provincial bracket table",
	Run: func(cmd *cobra.Command, args []string) {
		dataDir, _ := cmd.Flags().GetString("data")
		year, _ := cmd.Flags().GetInt("year")
		provinceFlag, _ := cmd.Flags().GetString("province")

		province, err := domain.ParseProvince(provinceFlag)
		if err != nil {
			log.Fatal(err)
		}

		loader := taxdata.NewLoader(dataDir)
		store, err := loader.LoadYear(year)
		if err != nil {
			log.Fatal(err)
		}
		if store.FellBack() {
			fmt.Printf("No bracket data for %d; using %d\n\n", store.RequestedYear, store.Year)
		}

		model, err := store.BuildModel(province)
		if err != nil {
			log.Fatal(err)
		}

		table, err := output.FormatBracketTable(model)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(table)
	},
}

// requestFromFlags builds the request and optimizer options common to the
// recommend and whatif commands.
func requestFromFlags(cmd *cobra.Command) (domain.OptimizationRequest, optimizer.Options) {
	incomeFlag, _ := cmd.Flags().GetString("income")
	provinceFlag, _ := cmd.Flags().GetString("province")
	year, _ := cmd.Flags().GetInt("year")

	province, err := domain.ParseProvince(provinceFlag)
	if err != nil {
		log.Fatal(err)
	}

	req := domain.OptimizationRequest{
		Income:   mustDecimal("income", incomeFlag),
		Province: province,
		Year:     year,
	}

	opts := optimizer.DefaultOptions()
	if minRate, _ := cmd.Flags().GetString("min-rate"); minRate != "" {
		opts.MinMarginalRate = mustDecimal("min-rate", minRate)
	}
	return req, opts
}

func runRequest(cmd *cobra.Command, req domain.OptimizationRequest, opts optimizer.Options) {
	dataDir, _ := cmd.Flags().GetString("data")
	format, _ := cmd.Flags().GetString("format")

	loader := taxdata.NewLoader(dataDir)
	store, err := loader.LoadYear(req.Year)
	if err != nil {
		log.Fatal(err)
	}
	if store.FellBack() {
		fmt.Printf("No bracket data for %d; using %d\n\n", store.RequestedYear, store.Year)
	}

	model, err := store.BuildModel(req.Province)
	if err != nil {
		log.Fatal(err)
	}

	result, err := optimizer.NewWithOptions(model, opts).Evaluate(req)
	if err != nil {
		log.Fatal(err)
	}

	switch format {
	case "console":
		fmt.Print((&output.TableFormatter{}).Format(result))
	case "json":
		out, err := (&output.JSONFormatter{Pretty: true}).Format(result)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out)
	case "csv":
		out, err := (&output.CSVFormatter{}).Format(result)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(out)
	default:
		log.Fatalf("unsupported format: %s", format)
	}
}

func mustDecimal(name, value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		log.Fatalf("invalid %s %q: %v", name, value, err)
	}
	return d
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("income", "", "Annual taxable income (required)")
	cmd.Flags().String("province", "", "Two-letter province code, e.g. ON (required)")
	cmd.Flags().Int("year", time.Now().Year(), "Tax year")
	cmd.Flags().String("data", "data", "Directory holding tax_brackets_<year>.json files")
	cmd.Flags().String("format", "console", "Output format (console, json, csv)")
	cmd.Flags().String("min-rate", "", "Minimum marginal deduction rate for max_refund_rate, e.g. 0.25")
	_ = cmd.MarkFlagRequired("income")
	_ = cmd.MarkFlagRequired("province")
}

func init() {
	addCommonFlags(recommendCmd)
	recommendCmd.Flags().String("goal", string(domain.GoalFillCurrentBracket),
		"Optimization goal (fill_bracket, max_refund_rate, ceiling)")
	recommendCmd.Flags().String("ceiling", "", "Contribution-room cap for the ceiling goal")

	addCommonFlags(whatifCmd)
	whatifCmd.Flags().String("loan", "", "Candidate loan amount (required)")
	_ = whatifCmd.MarkFlagRequired("loan")

	bracketsCmd.Flags().String("province", "", "Two-letter province code, e.g. ON (required)")
	bracketsCmd.Flags().Int("year", time.Now().Year(), "Tax year")
	bracketsCmd.Flags().String("data", "data", "Directory holding tax_brackets_<year>.json files")
	_ = bracketsCmd.MarkFlagRequired("province")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(whatifCmd)
	rootCmd.AddCommand(bracketsCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
