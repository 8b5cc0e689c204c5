package main

import (
	"os"

	"gwi.com/chatmood/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
