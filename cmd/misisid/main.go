package main

import (
	"context"

	"misisid/cmd/misisid/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
