package main

import (
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // registers the MIDI driver

	"github.com/tessro/stave/internal/cli"
)

func main() {
	cli.Execute()
}
