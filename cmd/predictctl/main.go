package main

import (
	"os"

	"predictd/internal/predictctl"
)

func main() {
	os.Exit(predictctl.Main())
}
