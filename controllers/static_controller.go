package controllers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/MissDaze/Sassclub/models"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

const indexFile = "index.html"

// StaticController serves the storefront front-end. Unknown paths get the
// entry document so client-side routes work on reload.
type StaticController struct {
	index string
	files gin.HandlerFunc
}

func NewStaticController(root string) *StaticController {
	return &StaticController{
		index: filepath.Join(root, indexFile),
		files: static.Serve("/", static.LocalFile(root, false)),
	}
}

// Serve is mounted as the router's NoRoute handler.
func (sc *StaticController) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		notFound(c)
		return
	}
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		notFound(c)
		return
	}

	// Clean against "/" so ".." can never climb out of root.
	c.Request.URL.Path = path.Clean("/" + c.Request.URL.Path)
	sc.files(c)
	if c.IsAborted() {
		return
	}

	if info, err := os.Stat(sc.index); err != nil || info.IsDir() {
		notFound(c)
		return
	}
	c.File(sc.index)
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
}
