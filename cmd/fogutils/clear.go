package main

import (
	"context"
	"flag"
	"log"

	"github.com/google/subcommands"
)

type clearCmd struct {
	inputPaths pathList
	outputPath string
	bbox       string
	dirtyOnly  bool
}

func (c *clearCmd) Name() string     { return "clear" }
func (c *clearCmd) Synopsis() string { return "erase everything inside a bounding box" }
func (c *clearCmd) Usage() string {
	return "fogutils clear -i <archive> -o <archive> -bbox west,south,east,north [-dirty]\n"
}
func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.inputPaths, "i", "Input archive or directory (repeatable)")
	f.StringVar(&c.outputPath, "o", "", "Output archive path")
	f.StringVar(&c.bbox, "bbox", "", "Rectangle to clear, as west,south,east,north")
	f.BoolVar(&c.dirtyOnly, "dirty", false, "Export only tiles changed by this run")
}

func (c *clearCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if len(c.inputPaths) == 0 || c.outputPath == "" || c.bbox == "" {
		log.Println("missing -i, -o or -bbox")
		return subcommands.ExitUsageError
	}

	bbox, err := parseBbox(c.bbox)
	if err != nil {
		log.Println(err)
		return subcommands.ExitUsageError
	}

	m, err := loadMaps(c.inputPaths)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	cleared := m.ClearBbox(bbox)
	if cleared == m {
		log.Println("nothing to clear inside bbox")
	}

	if err := saveArchive(ctx, c.outputPath, cleared, c.dirtyOnly); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
