package main

import (
	"fmt"
	"os"

	"github.com/dairyerp/dairyclient/internal/apierr"
	"github.com/dairyerp/dairyclient/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, apierr.UserMessage(err))
		os.Exit(1)
	}
}
