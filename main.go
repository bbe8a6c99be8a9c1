package main

import (
	"os"

	"github.com/firefly-engineering/warden-ctl/cmd"
	"github.com/firefly-engineering/warden-ctl/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
