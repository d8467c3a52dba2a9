package main

import (
	"fmt"
	"time"

	"bitwise74/avatar-api/api"
	"bitwise74/avatar-api/config"
	"bitwise74/avatar-api/db"
	"bitwise74/avatar-api/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	d, err := db.New()
	if err != nil {
		panic(err)
	}

	a, err := api.NewRouter(d)
	if err != nil {
		panic(err)
	}

	service.TokenCleanup(time.Hour, d)

	zap.L().Info("Server starting")

	err = a.Router.Run(fmt.Sprintf(":%d", viper.GetInt("host.port")))
	if err != nil {
		panic(err)
	}
}
