package main

import (
	"fmt"

	"github.com/alecthomas/kong"
)

var (
	// Version 由 ldflags 在建置時設定
	Version = ""
	// CommitSHA 由 ldflags 在建置時設定
	CommitSHA = ""

	cli struct {
		Globals
		Version kong.VersionFlag `help:"Show version information"`
		Commands
	}
)

func main() {
	ctx := kong.Parse(&cli,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("bank"),
		kong.Description("A single-account banking ledger."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func buildVersion() string {
	if Version == "" {
		Version = "dev"
	}
	if CommitSHA == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, CommitSHA)
}
