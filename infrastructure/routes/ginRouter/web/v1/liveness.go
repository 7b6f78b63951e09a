package routev1

import (
	"github.com/gin-gonic/gin"

	apperrors "livegate.io/application/appErrors"
	"livegate.io/application/controller"
	"livegate.io/application/interfaces"
	"livegate.io/infrastructure/logger"
	"livegate.io/infrastructure/websocket"
)

func LivenessRouter(router *gin.RouterGroup) {
	livenessRouter := router.Group("/liveness")
	{
		livenessRouter.GET("/ws", func(ctx *gin.Context) {
			socket, err := websocket.Upgrade(ctx.Writer, ctx.Request)
			if err != nil {
				logger.Warning("websocket upgrade failed", logger.LoggerOptions{
					Key:  "error",
					Data: err,
				})
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.LivenessSocket(socket)
		})

		livenessRouter.GET("/session/:id", func(ctx *gin.Context) {
			controller.FetchSessionResult(&interfaces.ApplicationContext[any]{
				Ctx: ctx,
				Keys: map[string]any{
					"sessionID": ctx.Param("id"),
				},
			})
		})
	}
}
