package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"fjacquet/expense-insights/cmd/analyze"
	"fjacquet/expense-insights/cmd/ask"
	"fjacquet/expense-insights/cmd/forecast"
	"fjacquet/expense-insights/cmd/history"
	"fjacquet/expense-insights/cmd/root"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(analyze.Cmd)
	root.Cmd.AddCommand(forecast.Cmd)
	root.Cmd.AddCommand(forecast.FeaturesCmd)
	root.Cmd.AddCommand(ask.Cmd)
	root.Cmd.AddCommand(history.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.Cmd.ExecuteContext(ctx)
	root.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
