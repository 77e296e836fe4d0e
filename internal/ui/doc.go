// Package ui renders terminal output for the camlight CLI.
//
// Output follows a "run once and exit" pattern. A command prints a Header,
// runs its work under RunWithSpinner, which shows the latest status label
// reported by the command handler, and finishes with a Result box.
//
//	printer := ui.NewPrinter(os.Stdout)
//	printer.PrintHeader(ui.NewHeader("Set light", "camlight set garage auto",
//	    ui.Param{Key: "Device", Value: "192.168.1.108"}))
//
//	var res lighting.OperationResult
//	err := ui.RunWithSpinner(ctx, os.Stdout, "Connecting...",
//	    func(ctx context.Context, r status.Reporter) error {
//	        opts.Reporter = r
//	        res = lighting.NewDevice(opts).HandleCommand(ctx, "auto")
//	        return nil
//	    })
//	printer.PrintResult(ui.CommandResult("garage", "auto", res))
//
// When stdout is not a terminal the spinner is skipped and only the final
// result is printed.
//
// Logging is controlled by the CAMLIGHT_LOG_LEVEL environment variable.
// When it is unset, zap output is silent so the UI is not interleaved
// with log lines.
package ui
