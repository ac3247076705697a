package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskman-api/domain"
	"taskman-api/storage"
)

type subTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Task        *uint          `json:"task"`
	Status      *domain.Status `json:"status"`
	Deadline    *domain.Date   `json:"deadline"`
}

func listSubTasks(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter, err := parseSubTaskFilter(c)
		if err != nil {
			return writeError(c, err)
		}
		page, err := d.Pager.Parse(c)
		if err != nil {
			return writeError(c, err)
		}
		subtasks, total, err := d.SubTasks.List(c.Request().Context(), filter, page)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, wrapPage(d.Pager, c, page, subtasks, total, subTaskID))
	}
}

func mySubTasks(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := requireUser(c, d.Auth, d.Users)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		page, err := d.Pager.Parse(c)
		if err != nil {
			return writeError(c, err)
		}
		subtasks, total, err := d.SubTasks.ListByOwner(c.Request().Context(), user.ID, page)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, wrapPage(d.Pager, c, page, subtasks, total, subTaskID))
	}
}

func createSubTask(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := requireUser(c, d.Auth, d.Users)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		var req subTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, err.Error())
		}

		subtask := domain.SubTask{Status: domain.StatusNew, OwnerID: &user.ID}
		if err := applySubTaskRequest(&subtask, &req, false); err != nil {
			return writeError(c, err)
		}
		if err := d.SubTasks.Create(c.Request().Context(), &subtask); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, subtask)
	}
}

func getSubTask(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return writeError(c, &domain.NotFoundError{Resource: "subtask"})
		}
		subtask, err := d.SubTasks.Get(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, subtask)
	}
}

func updateSubTask(d Deps, partial bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := requireUser(c, d.Auth, d.Users)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return writeError(c, &domain.NotFoundError{Resource: "subtask"})
		}
		subtask, err := d.SubTasks.Get(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		if !canMutate(user, subtask.OwnerID) {
			return writeError(c, domain.ErrPermissionDenied)
		}

		var req subTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, err.Error())
		}
		if err := applySubTaskRequest(subtask, &req, partial); err != nil {
			return writeError(c, err)
		}
		if err := d.SubTasks.Update(c.Request().Context(), subtask); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, subtask)
	}
}

func deleteSubTask(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := requireUser(c, d.Auth, d.Users)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return writeError(c, &domain.NotFoundError{Resource: "subtask"})
		}
		subtask, err := d.SubTasks.Get(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		if !canMutate(user, subtask.OwnerID) {
			return writeError(c, domain.ErrPermissionDenied)
		}
		if err := d.SubTasks.Delete(c.Request().Context(), id); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func applySubTaskRequest(subtask *domain.SubTask, req *subTaskRequest, partial bool) error {
	if !partial {
		if req.Title == nil {
			return domain.NewValidationError("title", "title is required")
		}
		if req.Task == nil {
			return domain.NewValidationError("task", "task is required")
		}
		if req.Deadline == nil {
			return domain.NewValidationError("deadline", "deadline is required")
		}
	}
	if req.Title != nil {
		if err := domain.ValidateTitle("title", *req.Title); err != nil {
			return err
		}
		subtask.Title = *req.Title
	}
	if req.Description != nil {
		subtask.Description = *req.Description
	}
	if req.Task != nil {
		subtask.TaskID = *req.Task
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return domain.NewValidationError("status", "invalid status")
		}
		subtask.Status = *req.Status
	}
	if req.Deadline != nil {
		if err := domain.ValidateDeadline(*req.Deadline); err != nil {
			return err
		}
		subtask.Deadline = *req.Deadline
	}
	return nil
}

func parseSubTaskFilter(c echo.Context) (storage.SubTaskFilter, error) {
	var filter storage.SubTaskFilter

	if raw := c.QueryParam("status"); raw != "" {
		status := domain.Status(raw)
		if !status.Valid() {
			return filter, domain.NewValidationError("status", "invalid status")
		}
		filter.Status = &status
	}
	if raw := c.QueryParam("deadline"); raw != "" {
		deadline, err := domain.ParseDate(raw)
		if err != nil {
			return filter, domain.NewValidationError("deadline", err.Error())
		}
		filter.Deadline = &deadline
	}
	filter.Search = c.QueryParam("search")
	filter.TaskTitle = c.QueryParam("task")
	ordering, err := parseOrdering(c)
	if err != nil {
		return filter, err
	}
	filter.Ordering = ordering
	return filter, nil
}

func subTaskID(s domain.SubTask) uint { return s.ID }
