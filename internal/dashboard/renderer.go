package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Renderer paints a dashboard view onto the response
type Renderer interface {
	Render(c *gin.Context, view *View)
}

// JSONRenderer writes the view as JSON for the browser client to paint
type JSONRenderer struct{}

// Render writes view with status 200
func (JSONRenderer) Render(c *gin.Context, view *View) {
	c.JSON(http.StatusOK, view)
}
