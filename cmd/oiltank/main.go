package main

import (
	"oil-tank-monitor/internal/cli"
)

func main() {
	cli.Execute()
}
