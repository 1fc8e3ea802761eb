package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"zadachnik/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportTasks streams the high-priority task set as an XLSX download (admin
// only).
func ExportTasks(c *fiber.Ctx) error {
	f, err := services.BuildTaskExport()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build export",
		})
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to write export",
		})
	}

	filename := "tasks_" + uuid.NewString() + ".xlsx"
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
