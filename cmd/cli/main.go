package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/crucial707/reporthub/cmd/cli/auth"
	"github.com/crucial707/reporthub/cmd/cli/channels"
	"github.com/crucial707/reporthub/cmd/cli/cron"
	"github.com/crucial707/reporthub/cmd/cli/reporters"
	"github.com/crucial707/reporthub/cmd/cli/root"
	"github.com/crucial707/reporthub/cmd/cli/schedules"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	schedules.InitSchedules(rootCmd)
	channels.InitChannels(rootCmd)
	reporters.InitReporters(rootCmd)
	cron.InitCron(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
