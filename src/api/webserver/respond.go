package webserver

import (
	"log"

	"github.com/da-upm/participa/src/api/errs"
	"github.com/gin-gonic/gin"
)

// fail writes the structured error response: a stable code plus the public
// message. Internal causes are logged server-side only.
func fail(c *gin.Context, err error) {
	if errs.KindOf(err) == errs.KindInternal {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(errs.Status(err), gin.H{"code": errs.Code(err), "err": errs.Public(err)})
}
