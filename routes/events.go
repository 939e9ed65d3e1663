package routes

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sachalprvt-cloud/hibikiiii/services"
)

// AddEventRoutes exposes the broadcast stream as server-sent events. The
// stream stays open until the client disconnects.
func AddEventRoutes(group *gin.RouterGroup, broadcaster *services.Broadcaster) {
	group.GET("/events", func(c *gin.Context) {
		stream, cancel := broadcaster.Subscribe(c.Request.Context())
		defer cancel()

		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Stream(func(w io.Writer) bool {
			select {
			case event, ok := <-stream:
				if !ok {
					return false
				}
				c.SSEvent(event.Type, event)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	})
}
