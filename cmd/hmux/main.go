package main

import (
	"log"

	"go.inet256.org/hmux/src/hmuxcmd"
)

func main() {
	if err := hmuxcmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
