package main

import (
	"flag"
	"log"

	"github.com/railchess/aarc2rc/server"
)

var addr = flag.String("addr", ":3005", "Listen address of the task API")

func main() {
	flag.Parse()

	s := server.New()
	s.Start()
	defer s.Close()

	log.Fatal(s.ListenAndServe(*addr))
}
