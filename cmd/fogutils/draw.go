package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/subcommands"
)

type drawCmd struct {
	inputPaths pathList
	outputPath string
	lines      pathList
	erase      bool
	dirtyOnly  bool
}

func (c *drawCmd) Name() string     { return "draw" }
func (c *drawCmd) Synopsis() string { return "draw or erase line segments and export the result" }
func (c *drawCmd) Usage() string {
	return "fogutils draw [-i <archive>] -o <archive> -line lng1,lat1,lng2,lat2 [-line ...] [-erase] [-dirty]\n"
}
func (c *drawCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.inputPaths, "i", "Input archive or directory (repeatable, optional)")
	f.StringVar(&c.outputPath, "o", "", "Output archive path")
	f.Var(&c.lines, "line", "Segment as lng1,lat1,lng2,lat2 (repeatable)")
	f.BoolVar(&c.erase, "erase", false, "Erase instead of reveal")
	f.BoolVar(&c.dirtyOnly, "dirty", false, "Export only tiles changed by this run")
}

func (c *drawCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.outputPath == "" || len(c.lines) == 0 {
		log.Println("missing -o or -line")
		return subcommands.ExitUsageError
	}

	m, err := loadMaps(c.inputPaths)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	for _, line := range c.lines {
		var lng1, lat1, lng2, lat2 float64
		if _, err := fmt.Sscanf(line, "%f,%f,%f,%f", &lng1, &lat1, &lng2, &lat2); err != nil {
			log.Printf("invalid -line %q: %v", line, err)
			return subcommands.ExitUsageError
		}
		m = m.AddLine(lng1, lat1, lng2, lat2, !c.erase)
	}

	if err := saveArchive(ctx, c.outputPath, m, c.dirtyOnly); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
