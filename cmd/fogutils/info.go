package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/subcommands"

	"github.com/eak1mov/go-fogmap/fog"
)

type infoCmd struct {
	inputPaths pathList
}

func (c *infoCmd) Name() string     { return "info" }
func (c *infoCmd) Synopsis() string { return "print statistics about fog archives" }
func (c *infoCmd) Usage() string {
	return "fogutils info -i <archive-or-dir> [-i <archive-or-dir> ...]\n"
}
func (c *infoCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.inputPaths, "i", "Input archive or directory (repeatable)")
}

func (c *infoCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if len(c.inputPaths) == 0 {
		log.Println("no input given")
		return subcommands.ExitUsageError
	}

	m, err := loadMaps(c.inputPaths)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	pixels := 0
	regions := make(map[string]int)
	err = m.VisitTiles(func(_ fog.TileKey, t *fog.Tile) error {
		for _, b := range t.Blocks() {
			pixels += b.Count()
			regions[b.Region()]++
		}
		return nil
	})
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	fmt.Printf("tiles:   %d\n", m.TileCount())
	fmt.Printf("blocks:  %d\n", m.BlockCount())
	fmt.Printf("pixels:  %d\n", pixels)
	fmt.Printf("regions: %d\n", len(regions))
	return subcommands.ExitSuccess
}
