package main

import (
	"github.com/mockmart/techstore/internal/config"
	"github.com/mockmart/techstore/internal/payment/app"
)

func main() {
	config.MustInit("payment")
	app.MustNewApp().Run()
}
