package main

import (
	"os"
	"time"

	"github.com/ms-elk/rtcamp11/cmd"
)

func main() {
	start := time.Now()

	app := cmd.NewApp(start)
	if err := app.Run(os.Args); err != nil {
		os.Exit(-1)
	}
}
