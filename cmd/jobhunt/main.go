package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/skillsenselab/jobhunt/internal/app"
	"github.com/skillsenselab/jobhunt/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (standard locations are searched when empty)")
	flag.Parse()

	var opts []config.LoaderOption
	if *configPath != "" {
		opts = append(opts, config.WithConfigFile(*configPath))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobhunt: load config: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jobhunt: %v\n", err)
		os.Exit(1)
	}

	if err := a.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "jobhunt: %v\n", err)
		os.Exit(1)
	}
}
