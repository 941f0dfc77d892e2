package main

import (
	"github.com/sipalaciosv/inspeccion-vehicular/cmd"
)

func main() {
	cmd.Execute()
}
