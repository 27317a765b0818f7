package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/ledger"
	"github.com/feral-file/ff-sale-ledger/internal/store"
)

var cmdMigrate = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the ledger tables",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		checkf(store.Migrate(openDB()), "migrate")
		fmt.Println("Migrated")
	},
}

var cmdBootstrap = &cobra.Command{
	Use:   "bootstrap",
	Short: "Write the genesis state if the ledger is empty",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		genesis, err := ledger.NewGenesis(ctlConfig.Ledger)
		checkf(err, "genesis config")
		engine, _ := openEngine()
		created, err := engine.Bootstrap(commandContext(cmd), genesis)
		checkf(err, "bootstrap")
		if created {
			fmt.Println("Ledger bootstrapped")
		} else {
			fmt.Println("Ledger already initialized")
		}
	},
}

var cmdStage = &cobra.Command{
	Use:   "stage",
	Short: "Show the current sale stage and window schedule",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext(cmd)
		engine, _ := openEngine()
		stage, err := engine.Stage(ctx)
		check(err)
		s, statuses, err := engine.Schedule(ctx)
		check(err)

		fmt.Printf("Stage:      %s\n", stage)
		if s.StartTime == 0 {
			fmt.Println("Start time: not scheduled")
		} else {
			fmt.Printf("Start time: %s\n", time.Unix(s.StartTime, 0).UTC().Format(time.RFC3339))
		}
		for _, st := range statuses {
			marker := " "
			if st.Active {
				marker = "*"
			}
			fmt.Printf("%s %-10s %s .. %s\n", marker, st.Name,
				time.Unix(st.Start, 0).UTC().Format(time.RFC3339),
				time.Unix(st.End, 0).UTC().Format(time.RFC3339))
		}
	},
}

var cmdSetStartTime = &cobra.Command{
	Use:   "set-start-time <unix-seconds>",
	Short: "Set the sale start time; 0 unschedules the sale",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		start, err := strconv.ParseInt(args[0], 10, 64)
		checkf(err, "start time")
		engine, cfg := openEngine()
		check(engine.SetSaleStartTime(commandContext(cmd), cfg.Owner, start))
		fmt.Println("Sale start time updated")
	},
}

var cmdSetWindow = &cobra.Command{
	Use:   "set-window <slot3|slot2|slot1|redemption|p2swap> <day-offset> <duration-seconds>",
	Short: "Replace one sale window",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		name, err := domain.ParseWindowName(args[0])
		checkf(err, "window %q", args[0])
		dayOffset, err := strconv.ParseUint(args[1], 10, 64)
		checkf(err, "day offset")
		duration, err := strconv.ParseUint(args[2], 10, 64)
		checkf(err, "duration")

		engine, cfg := openEngine()
		check(engine.SetWindow(commandContext(cmd), cfg.Owner, name, domain.Window{DayOffset: dayOffset, Duration: duration}))
		fmt.Printf("Window %s updated\n", name)
	},
}

var cmdWhitelist = &cobra.Command{
	Use:   "whitelist",
	Short: "Manage the slot 2 whitelist",
	Run:   printUsageAndExit1,
}

var cmdWhitelistAdd = &cobra.Command{
	Use:   "add <address>...",
	Short: "Whitelist addresses",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addresses, err := domain.ParseAddresses(args)
		check(err)
		engine, cfg := openEngine()
		check(engine.AddWhitelist(commandContext(cmd), cfg.Owner, addresses))
		fmt.Printf("Whitelisted %d address(es)\n", len(addresses))
	},
}

var cmdWhitelistRemove = &cobra.Command{
	Use:   "remove <address>...",
	Short: "Remove addresses from the whitelist",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addresses, err := domain.ParseAddresses(args)
		check(err)
		engine, cfg := openEngine()
		check(engine.RemoveWhitelist(commandContext(cmd), cfg.Owner, addresses))
		fmt.Printf("Removed %d address(es)\n", len(addresses))
	},
}

var cmdPause = &cobra.Command{
	Use:   "pause <token>",
	Short: "Pause transfers of a token",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := domain.ParseTokenKind(args[0])
		checkf(err, "token %q", args[0])
		engine, cfg := openEngine()
		check(engine.Pause(commandContext(cmd), cfg.Owner, kind))
		fmt.Printf("Token %s paused\n", kind)
	},
}

var cmdUnpause = &cobra.Command{
	Use:   "unpause <token>",
	Short: "Resume transfers of a token",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kind, err := domain.ParseTokenKind(args[0])
		checkf(err, "token %q", args[0])
		engine, cfg := openEngine()
		check(engine.Unpause(commandContext(cmd), cfg.Owner, kind))
		fmt.Printf("Token %s unpaused\n", kind)
	},
}

func init() {
	cmdWhitelist.AddCommand(cmdWhitelistAdd, cmdWhitelistRemove)
	cmdMain.AddCommand(cmdMigrate, cmdBootstrap, cmdStage, cmdSetStartTime, cmdSetWindow, cmdWhitelist, cmdPause, cmdUnpause)
}
