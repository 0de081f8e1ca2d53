package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pdf2image/internal/config"
	"pdf2image/internal/domain"
	"pdf2image/internal/infra/logging"
	"pdf2image/internal/infra/usage"
	"pdf2image/internal/render"
	"pdf2image/internal/storage"
)

// ConvertRequest identifies the source PDF and optionally overrides the
// render settings. The overrides are pointers so an absent field falls back
// to the configured default while an explicit zero is rejected as invalid.
type ConvertRequest struct {
	Bucket        string `json:"bucket"`
	Key           string `json:"key"`
	DPI           *int   `json:"dpi"`
	MaxEdgePixels *int   `json:"max_edge_pixels"`
}

// ConvertResponse lists the rendered images in page order.
type ConvertResponse struct {
	Prefix string             `json:"prefix"`
	Images []storage.Location `json:"images"`
}

// ConvertService bundles configuration and dependencies for PDF-to-image
// conversion.
type ConvertService struct {
	Config config.Config
	Store  storage.ObjectStore
	Usage  *usage.Counters

	open func(data []byte) (render.Source, error)
}

// NewConvertService creates a new ConvertService instance.
func NewConvertService(cfg config.Config, store storage.ObjectStore, counters *usage.Counters) *ConvertService {
	return &ConvertService{
		Config: cfg,
		Store:  store,
		Usage:  counters,
		open:   render.Open,
	}
}

// HandleConversion fetches the source PDF, renders every page to a bounded
// PNG, uploads each one and returns the ordered list of locations. Any
// failure aborts the whole invocation: the caller gets an error, never a
// partial list.
func (svc *ConvertService) HandleConversion(c *fiber.Ctx) error {
	var req ConvertRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Bucket == "" || req.Key == "" {
		return fiber.NewError(fiber.StatusBadRequest, "bucket and key are required")
	}

	dpi := svc.Config.Render.DPI
	if req.DPI != nil {
		dpi = *req.DPI
	}
	maxEdge := svc.Config.Render.MaxEdgePixels
	if req.MaxEdgePixels != nil {
		maxEdge = *req.MaxEdgePixels
	}
	if dpi <= 0 || maxEdge <= 0 {
		return httpError(domain.ErrInvalidConfig)
	}

	ctx := c.UserContext()

	data, err := svc.Store.Get(ctx, req.Bucket, req.Key)
	if err != nil {
		return httpError(err)
	}
	if limit := svc.Config.Limits.MaxPDFBytes; limit > 0 && len(data) > limit {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "source document too large")
	}

	src, err := svc.open(data)
	if err != nil {
		return httpError(err)
	}
	defer src.Close()

	ras := render.Rasterizer{DPI: dpi, MaxEdgePixels: maxEdge}
	prefix := storage.NewPrefix()
	pages := src.NumPage()
	images := make([]storage.Location, 0, pages)

	for i := 0; i < pages; i++ {
		img, err := ras.RenderPage(src, i)
		if err != nil {
			return httpError(err)
		}
		key := storage.ImageKey(prefix, i)
		if err := svc.Store.Put(ctx, req.Bucket, key, img.PNG, "image/png"); err != nil {
			return httpError(err)
		}
		logging.Info("Page uploaded", "page", i, "key", key, "width", img.Width, "height", img.Height)
		images = append(images, storage.Location{Bucket: req.Bucket, Key: key})
	}

	svc.Usage.RecordConversion(ctx, pages)
	logging.Info("Document converted", "bucket", req.Bucket, "key", req.Key, "pages", pages, "prefix", prefix)

	return c.JSON(ConvertResponse{Prefix: prefix, Images: images})
}

// HandleUsageStats reports conversion totals.
func (svc *ConvertService) HandleUsageStats(c *fiber.Ctx) error {
	stats, err := svc.Usage.Snapshot(c.UserContext())
	if err != nil {
		logging.Error("Usage snapshot failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "usage stats unavailable")
	}
	return c.JSON(stats)
}

// httpError maps domain errors onto HTTP statuses; anything unknown bubbles
// up as a 500 through the app error handler.
func httpError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidConfig):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrDecode):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		return fiber.NewError(fiber.StatusInsufficientStorage, err.Error())
	}
	return err
}
