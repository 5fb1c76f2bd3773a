package cmd

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rm-hull/winter-studio/internal/config"
	"github.com/rm-hull/winter-studio/internal/png"
	"github.com/rm-hull/winter-studio/internal/png/stage"
	"github.com/rm-hull/winter-studio/internal/winter"
)

type WinterHandler struct {
	defaults       winter.ParameterSet
	exportFilename string
	maxUploadBytes int64
	seed           uint64
}

func NewWinterHandler(cfg *config.Config) *WinterHandler {
	return &WinterHandler{
		defaults:       cfg.Parameters(),
		exportFilename: cfg.ExportFilename,
		maxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		seed:           cfg.Seed,
	}
}

func (h *WinterHandler) Defaults(c *gin.Context) {
	c.JSON(http.StatusOK, h.defaults)
}

// Render applies the effect to the uploaded "image" part. Missing slider
// fields fall back to the configured defaults.
func (h *WinterHandler) Render(c *gin.Context) {
	start := time.Now()
	requestId := uuid.NewString()
	c.Header("X-Request-Id", requestId)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	params := h.defaults
	if err := c.ShouldBind(&params); err != nil {
		abort(c, uploadStatus(err), fmt.Errorf("failed to parse parameters: %w", err))
		return
	}
	if err := params.Validate(); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	format, err := png.ParseFormat(c.DefaultPostForm("format", string(png.FormatPNG)))
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		abort(c, uploadStatus(err), fmt.Errorf("missing image upload: %w", err))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("%w: %w", png.ErrImageLoad, err))
		return
	}
	defer func() {
		_ = f.Close()
	}()

	src, err := png.Decode(f)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	buf, err := winter.NewEffectPipeline(stage.NewRand(h.seed)).Run(src, params)
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}

	data, err := png.Encode(buf, format)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}

	log.Printf("[%s] Rendered %dx%d %s in %s (%s)", requestId, buf.Width(), buf.Height(), format, time.Since(start), humanize.Bytes(uint64(len(data))))

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.Filename(h.exportFilename)))
	c.Data(http.StatusOK, format.ContentType(), data)
}

// uploadStatus distinguishes a body over the upload limit from a malformed one.
func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, png.ErrImageLoad):
		return http.StatusBadRequest
	case errors.Is(err, png.ErrInvalidBuffer):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, status int, err error) {
	log.Printf("Render failed (%d): %v", status, err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
