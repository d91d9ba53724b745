package main

import (
	"github.com/mockmart/techstore/internal/config"
	"github.com/mockmart/techstore/internal/inventory/app"
)

func main() {
	config.MustInit("inventory")
	app.MustNewApp().Run()
}
