package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/vesting-engine/cli"
	"github.com/warp/vesting-engine/config"
	"github.com/warp/vesting-engine/generic"
	"github.com/warp/vesting-engine/historical"
	"github.com/warp/vesting-engine/price"
	"github.com/warp/vesting-engine/vesting"
)

var (
	flagGrowth float64
	flagPrice  float64
	flagStart  int
	flagMethod string
)

var projectCmd = &cobra.Command{
	Use:   "project [scheme]",
	Short: "Project a scheme over the next twenty years",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProject,
}

var historicalCmd = &cobra.Command{
	Use:   "historical [scheme]",
	Short: "Replay a scheme against historical yearly prices",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistorical,
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Fetch the current BTC/USD spot price",
	RunE:  runPrice,
}

func init() {
	projectCmd.Flags().Float64VarP(&flagGrowth, "growth", "g", -1, "Annual BTC price growth in percent (default from config)")
	projectCmd.Flags().Float64Var(&flagPrice, "price", 0, "Starting BTC price in USD (default: live quote)")

	historicalCmd.Flags().IntVarP(&flagStart, "start", "s", 2020, "Year of the initial grant")
	historicalCmd.Flags().StringVarP(&flagMethod, "method", "m", "average", "Cost basis: high, low or average")
	historicalCmd.Flags().Float64Var(&flagPrice, "price", 0, "Current BTC price in USD (default: live quote)")

	rootCmd.AddCommand(projectCmd, historicalCmd, priceCmd)
}

func runProject(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scheme, err := lookupScheme(cfg, args)
	if err != nil {
		return err
	}

	growth := cfg.Calculator.DefaultGrowthRate
	if cmd.Flags().Changed("growth") {
		growth = flagGrowth
	}
	calc := vesting.NewCalculator(scheme, growth, generic.DefaultBTCPrice)
	var status price.Status
	if flagPrice > 0 {
		calc.SetPrice(decimal.NewFromFloat(flagPrice))
		status = price.StatusLive
	} else {
		tracker := newTracker(cfg, nil)
		tracker.OnChange(func(r price.Result) { calc.SetPrice(r.Price()) })
		res, _ := tracker.Refresh(cmd.Context())
		status = res.Status
	}

	p := calc.Projection()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", strings.ToUpper(scheme.Name), scheme.Tagline)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.ProjectionSummaryTable(p, status)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.ProjectionTable(p)))
	return nil
}

func runHistorical(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scheme, err := lookupScheme(cfg, args)
	if err != nil {
		return err
	}
	method, err := historical.ParseCostBasisMethod(flagMethod)
	if err != nil {
		return err
	}
	table, err := historical.Bundled()
	if err != nil {
		return err
	}
	spot, status := spotPrice(cmd.Context(), cfg)

	r := historical.Evaluate(scheme, flagStart, method, table, spot)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  since %d", strings.ToUpper(scheme.Name), r.StartingYear)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.HistoricalSummaryTable(r, status)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.HistoricalTable(r)))
	if len(r.Timeline) > 0 {
		fmt.Println("  * valued at the current price")
	}
	return nil
}

func runPrice(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tracker := newTracker(cfg, nil)
	res, err := tracker.Refresh(cmd.Context())

	rows := [][]string{
		{"BTC/USD", cli.FormatUSD(res.Price())},
		{"Status", cli.FormatPriceStatus(res.Status)},
		{"Source", res.Quote.Source},
	}
	if !res.Quote.LastUpdated.IsZero() {
		rows = append(rows, []string{"Updated", res.Quote.LastUpdated.Local().Format("2006-01-02 15:04:05")})
		rows = append(rows, []string{"24h change", cli.FormatPercent(res.Quote.Change24h)})
	}
	if err != nil {
		rows = append(rows, []string{"Error", err.Error()})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{Rows: rows}))
	return nil
}

// lookupScheme resolves a preset by id, defaulting to the configured scheme.
func lookupScheme(cfg config.Config, args []string) (*generic.Scheme, error) {
	id := cfg.Calculator.DefaultScheme
	if len(args) > 0 {
		id = args[0]
	}
	for _, s := range vesting.DefaultSchemes() {
		if string(s.ID) == id {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (want accelerator, steady-builder or slow-burn)", generic.ErrSchemeNotFound, id)
}

// spotPrice prefers --price, then a live quote, then the fallback.
func spotPrice(ctx context.Context, cfg config.Config) (decimal.Decimal, price.Status) {
	if flagPrice > 0 {
		return decimal.NewFromFloat(flagPrice), price.StatusLive
	}
	tracker := newTracker(cfg, nil)
	res, _ := tracker.Refresh(ctx)
	return res.Price(), res.Status
}
