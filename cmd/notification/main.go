package main

import (
	"github.com/mockmart/techstore/internal/config"
	"github.com/mockmart/techstore/internal/notification/app"
)

func main() {
	config.MustInit("notification")
	app.MustNewApp().Run()
}
