package main

import (
	"log"

	"github.com/polylab/thegallery/cmd/thegallery"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	thegallery.Execute()
}
