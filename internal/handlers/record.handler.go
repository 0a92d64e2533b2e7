package handlers

import (
	"clinic/internal/app"
	"clinic/internal/logger"

	recordsController "clinic/internal/controllers/records"
	. "clinic/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RecordHandler exposes one entity kind as a create/read REST resource.
type RecordHandler[C Creation[R], R Record] struct {
	Handler
	path       string
	controller *recordsController.Controller[C, R]
}

func NewRecordHandler[C Creation[R], R Record](
	app app.App,
	router fiber.Router,
	path string,
	controller *recordsController.Controller[C, R],
) *RecordHandler[C, R] {
	log := logger.New("handlers").File("record_handler").With("path", path)
	return &RecordHandler[C, R]{
		path:       path,
		controller: controller,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *RecordHandler[C, R]) Register() {
	records := h.router.Group(h.path)
	records.Post("/", h.create)
	records.Get("/", h.list)
	records.Get("/:id", h.get)
}

func (h *RecordHandler[C, R]) create(c *fiber.Ctx) error {
	record, err := h.controller.Create(c.UserContext(), c.Body())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *RecordHandler[C, R]) get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		h.log.Function("get").Debug("malformed id", "id", c.Params("id"))
		return &NotFoundError{Kind: h.controller.Kind()}
	}

	record, err := h.controller.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(record)
}

func (h *RecordHandler[C, R]) list(c *fiber.Ctx) error {
	records, err := h.controller.List(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(records)
}
