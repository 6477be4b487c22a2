package main

import (
	"github.com/jmaese/runnel/internal/cli"
	"github.com/jmaese/runnel/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
