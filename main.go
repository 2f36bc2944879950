package main

import (
	"log"

	"github.com/praxisapp/praxis-backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
