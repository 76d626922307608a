package main

import (
	"github.com/shravanasati/guestserver/internal/demo"
	"github.com/shravanasati/guestserver/lambdaurl"
	"github.com/shravanasati/guestserver/router"
)

func main() {
	routes := router.NewTable()
	demo.Register(routes)

	lambdaurl.Start(routes)
}
