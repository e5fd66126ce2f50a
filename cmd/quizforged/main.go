package main

import (
	"log"
	"os"

	"github.com/quizforge/quizforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
