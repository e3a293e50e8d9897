package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/conduit/pkg/config"
	"github.com/chazu/conduit/pkg/kernel"
	"github.com/chazu/conduit/pkg/kernel/sdfx"
)

var (
	configPath = flag.String("config", "", "TOML settings file")
	outPath    = flag.String("o", "", "output STL file (default: script name with .stl)")
	obstacles  = flag.Bool("obstacles", false, "include obstacle meshes in the output")
	jsonOut    = flag.Bool("json", false, "print the evaluation result as JSON instead of writing STL")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] scene.conduit\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

func run(script string) error {
	c := config.Default()
	if *configPath != "" {
		var err error
		if c, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *obstacles {
		c.Output.Obstacles = true
	}
	if *outPath != "" {
		c.Output.Path = *outPath
	}
	if c.Output.Path == "" {
		c.Output.Path = strings.TrimSuffix(script, filepath.Ext(script)) + ".stl"
	}

	source, err := os.ReadFile(script)
	if err != nil {
		return err
	}
	app := NewAppWithConfig(c)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(app.Evaluate(string(source)))
	}

	res, result := app.build(string(source))
	for _, w := range result.Warnings {
		log.Printf("warning: %s", w.Message)
	}
	if res == nil {
		for _, e := range result.Errors {
			log.Printf("%s:%d:%d: %s", script, e.Line, e.Col, e.Message)
		}
		return fmt.Errorf("%s: %d errors", script, len(result.Errors))
	}

	meshes := append([]*kernel.Mesh{res.Pipes}, res.Obstacles...)
	if err := sdfx.SaveSTL(c.Output.Path, meshes...); err != nil {
		return err
	}
	log.Printf("wrote %d pipes to %s", res.Network.Len(), c.Output.Path)
	return nil
}
