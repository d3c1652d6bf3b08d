package main

import (
	"github.com/noa10/mataresit-app-sub017/pkg/cli"
)

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	cli.SetVersion(version, buildDate, gitCommit)
	cli.Execute()
}
