package main

import (
	log "github.com/sirupsen/logrus"

	"booking-system/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
