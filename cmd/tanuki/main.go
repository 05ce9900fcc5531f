package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lovi-cloud/tanuki"
)

func main() {
	if err := tanuki.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
