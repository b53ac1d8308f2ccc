package main

import (
	"context"
	"flag"
	"log"

	"github.com/google/subcommands"
)

type mergeCmd struct {
	inputPaths pathList
	outputPath string
}

func (c *mergeCmd) Name() string     { return "merge" }
func (c *mergeCmd) Synopsis() string { return "merge several fog archives into one (union)" }
func (c *mergeCmd) Usage() string {
	return "fogutils merge -i <archive> -i <archive> [...] -o <archive>\n"
}
func (c *mergeCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.inputPaths, "i", "Input archive or directory (repeatable)")
	f.StringVar(&c.outputPath, "o", "", "Output archive path")
}

func (c *mergeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if len(c.inputPaths) < 2 || c.outputPath == "" {
		log.Println("need at least two -i inputs and -o")
		return subcommands.ExitUsageError
	}

	m, err := loadMaps(c.inputPaths)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	if err := saveArchive(ctx, c.outputPath, m, false); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
