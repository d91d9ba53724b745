package main

import (
	"github.com/mockmart/techstore/internal/config"
	"github.com/mockmart/techstore/internal/shopapi/app"
)

func main() {
	config.MustInit("shop-api")
	app.MustNewApp().Run()
}
