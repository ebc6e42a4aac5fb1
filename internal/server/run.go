package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/setavenger/ztransparent/internal/config"
	"github.com/setavenger/ztransparent/internal/logging"
)

// NewRouter registers the read-only endpoints of api.
func NewRouter(api *ApiHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger)
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/info", api.GetInfo)
	router.GET("/block-height", api.GetBestBlockHeight)
	router.GET("/tx/:txid", api.GetTransactionLocation)

	address := router.Group("/address/:address", FetchAddressMiddleware(api.State.Network()))
	address.GET("/balance", api.GetAddressBalance)
	address.GET("/utxos", api.GetAddressUtxos)
	address.GET("/txids", api.GetAddressTxIDs)

	return router
}

func RunServer(api *ApiHandler) {
	gin.SetMode(gin.ReleaseMode)

	router := NewRouter(api)
	logging.L.Info().Str("host", config.HTTPHost).Msg("starting http server")
	if err := router.Run(config.HTTPHost); err != nil {
		logging.L.Err(err).Msg("could not run server")
	}
}

func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	logging.L.Debug().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("took", time.Since(start)).
		Msg("http request")
}
