package main

import (
	"github.com/lukelittle/claroz/internal/cmd"
)

func main() {
	cmd.Run()
}
