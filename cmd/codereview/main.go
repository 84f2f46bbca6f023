package main

import (
	"os"

	"github.com/wangyue6761/CodeReview/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
