package main

import (
	"github.com/arnavkapoor/campuschat/internal/cli"
)

func main() {
	cli.Run()
}
