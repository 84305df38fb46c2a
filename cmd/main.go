package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/lexquery/lexquery/cmd/lexquery"
)

func main() {
	// Local development keeps NEO4J_* and OPENAI_API_KEY in a .env file.
	_ = godotenv.Load()

	if err := lexquery.Execute(); err != nil {
		os.Exit(1)
	}
}
