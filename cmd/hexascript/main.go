package main

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/hexa-core/hexascript/pkg/app"
)

func main() {
	application := app.New(os.Stdout)
	if err := application.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
