package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/feral-file/ff-sale-ledger/internal/adapter"
	"github.com/feral-file/ff-sale-ledger/internal/audit"
)

var cmdAudit = &cobra.Command{
	Use:   "audit",
	Short: "Check supply conservation and the event hash chain",
	Args:  cobra.NoArgs,
	Run:   runAudit,
}

func init() {
	cmdMain.AddCommand(cmdAudit)
}

func runAudit(cmd *cobra.Command, args []string) {
	auditor := audit.New(openStore(), adapter.NewJCS(), adapter.NewClock(), audit.Config{PoolSize: ctlConfig.Audit.PoolSize})
	defer auditor.Close()

	report, err := auditor.Run(commandContext(cmd))
	checkf(err, "audit")

	for _, f := range report.Findings {
		status := "ok"
		if !f.OK {
			status = "FAIL"
		}
		name := f.Check
		if f.Token != "" {
			name += "/" + string(f.Token)
		}
		fmt.Printf("%-4s %-24s %s\n", status, name, f.Detail)
	}
	if !report.OK() {
		auditor.Close()
		os.Exit(2)
	}
}
