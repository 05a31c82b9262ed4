package main

import (
	"context"
	"fmt"
	"os"

	"github.com/archstrap/archstrap/internal/cmd"
	"github.com/archstrap/archstrap/internal/contextual"
	"github.com/archstrap/archstrap/internal/system"
)

func main() {
	sys, err := system.Scan()
	if err != nil {
		panic(fmt.Errorf("cannot identify system: %w", err))
	}
	p := sys.Platform()
	if p == nil {
		panic("no platform associated with identified system")
	}

	ctx := contextual.WithPlatform(context.Background(), p)

	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
