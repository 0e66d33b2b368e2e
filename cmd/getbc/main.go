package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/bitkit/getbc/internal/command"
)

func main() {
	// A .env beside the invocation may supply LLVM_TOOLS_PATH.
	_ = godotenv.Load()
	os.Exit(command.Execute())
}
