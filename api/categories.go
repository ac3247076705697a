package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"taskman-api/domain"
)

type categoryRequest struct {
	Name *string `json:"name"`
}

func listCategories(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		page, err := d.Pager.Parse(c)
		if err != nil {
			return writeError(c, err)
		}
		all, _ := strconv.ParseBool(c.QueryParam("all"))
		var (
			cats  []domain.Category
			total int64
		)
		if all {
			cats, total, err = d.Categories.ListAll(c.Request().Context(), page)
		} else {
			cats, total, err = d.Categories.List(c.Request().Context(), page)
		}
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, wrapPage(d.Pager, c, page, cats, total, categoryID))
	}
}

func createCategory(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := requireUser(c, d.Auth, d.Users); err != nil {
			return unauthorized(c, err.Error())
		}
		var req categoryRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, err.Error())
		}
		if req.Name == nil {
			return writeError(c, domain.NewValidationError("name", "name is required"))
		}
		if err := domain.ValidateTitle("name", *req.Name); err != nil {
			return writeError(c, err)
		}
		category := domain.Category{Name: *req.Name}
		if err := d.Categories.Create(c.Request().Context(), &category); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, category)
	}
}

func getCategory(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return writeError(c, &domain.NotFoundError{Resource: "category"})
		}
		category, err := d.Categories.Get(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, category)
	}
}

func renameCategory(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := requireUser(c, d.Auth, d.Users); err != nil {
			return unauthorized(c, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return writeError(c, &domain.NotFoundError{Resource: "category"})
		}
		category, err := d.Categories.Get(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		var req categoryRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, err.Error())
		}
		if req.Name == nil {
			return writeError(c, domain.NewValidationError("name", "name is required"))
		}
		if err := domain.ValidateTitle("name", *req.Name); err != nil {
			return writeError(c, err)
		}
		if err := d.Categories.Rename(c.Request().Context(), category, *req.Name); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, category)
	}
}

func deleteCategory(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := requireUser(c, d.Auth, d.Users); err != nil {
			return unauthorized(c, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return writeError(c, &domain.NotFoundError{Resource: "category"})
		}
		if err := d.Categories.SoftDelete(c.Request().Context(), id); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func countCategoryTasks(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return writeError(c, &domain.NotFoundError{Resource: "category"})
		}
		count, err := d.Categories.CountTasks(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]int64{"task_count": count})
	}
}

func categoryID(cat domain.Category) uint { return cat.ID }
