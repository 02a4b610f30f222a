package main

import (
	"github.com/nhle/visadesk/internal/cmd"
)

func main() {
	cmd.Execute()
}
