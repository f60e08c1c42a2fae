package api

import (
	"db-crud/internal/record"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	acc *record.Accessor
}

func NewHandler(acc *record.Accessor) *Handler {
	return &Handler{acc: acc}
}

// query returns the named query parameters, failing with 400 when one is
// absent. Present but empty parameters are allowed.
func query(c *fiber.Ctx, names ...string) ([]string, error) {
	args := c.Context().QueryArgs()
	values := make([]string, len(names))
	for i, name := range names {
		if !args.Has(name) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "missing query parameter: "+name)
		}
		values[i] = c.Query(name)
	}
	return values, nil
}

func (h *Handler) GetFromTable(c *fiber.Ctx) error {
	q, err := query(c, "table", "id")
	if err != nil {
		return err
	}
	rec, err := h.acc.GetByID(c.UserContext(), q[0], q[1])
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *Handler) GetAllFromTable(c *fiber.Ctx) error {
	q, err := query(c, "table")
	if err != nil {
		return err
	}
	rows, err := h.acc.GetAll(c.UserContext(), q[0])
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *Handler) GetAllTables(c *fiber.Ctx) error {
	return c.JSON(h.acc.GetAllTables())
}

func (h *Handler) GetByField(c *fiber.Ctx) error {
	q, err := query(c, "table", "field", "value")
	if err != nil {
		return err
	}
	rows, err := h.acc.GetByField(c.UserContext(), q[0], q[1], q[2])
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *Handler) SetFieldValue(c *fiber.Ctx) error {
	q, err := query(c, "table", "id", "field", "value")
	if err != nil {
		return err
	}
	if err := h.acc.SetField(c.UserContext(), q[0], q[1], q[2], q[3]); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// AddRecordToTable inserts a row from every query parameter except table.
func (h *Handler) AddRecordToTable(c *fiber.Ctx) error {
	q, err := query(c, "table")
	if err != nil {
		return err
	}
	values := make(map[string]any)
	for k, v := range c.Queries() {
		if k != "table" {
			values[k] = v
		}
	}
	if _, err := h.acc.InsertRecord(c.UserContext(), q[0], values); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) DeleteRecord(c *fiber.Ctx) error {
	q, err := query(c, "table", "id")
	if err != nil {
		return err
	}
	if err := h.acc.DeleteRecord(c.UserContext(), q[0], q[1]); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) Describe(c *fiber.Ctx) error {
	return c.JSON(h.acc.Catalog().Describe())
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
