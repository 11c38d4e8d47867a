package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"tradelog/consumer/analytics"
	"tradelog/consumer/execution"
	"tradelog/consumer/pricemon"
	"tradelog/consumer/risk"
	"tradelog/service"
)

func report(out io.Writer, r service.Reader, symbols []string, limit, threshold decimal.Decimal) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	// ---------------- Execution ----------------

	desk := execution.New(r)
	mon := pricemon.New(r, threshold)
	fmt.Fprintln(w, "SYMBOL\tTRADES\tVOLUME\tVWAP\tLAST\tVOLATILE")
	for _, s := range symbols {
		sum, err := desk.Summarize(s)
		if err != nil {
			return err
		}
		last, _, err := mon.Last(s)
		if err != nil {
			return err
		}
		vol, err := mon.Volatile(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%d\n",
			s, sum.Trades, sum.Volume, sum.VWAP.StringFixed(2), last.Price.StringFixed(2), len(vol))
	}
	fmt.Fprintln(w)

	// ---------------- Portfolios ----------------

	an := analytics.New(r)
	portfolios, err := an.Portfolios()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "TRADER\tTRADES\tNOTIONAL\tSYMBOLS")
	for _, p := range portfolios {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", p.Trader, p.Trades, p.Notional.StringFixed(2), len(p.Holdings))
	}
	fmt.Fprintln(w)

	// ---------------- Risk ----------------

	breaches, err := risk.New(r, limit).Breaches()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "BREACH (gross > %s)\tGROSS\n", limit.String())
	for _, b := range breaches {
		fmt.Fprintf(w, "%s\t%s\n", b.Trader, b.Gross.StringFixed(2))
	}

	return w.Flush()
}
