package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskman-api/domain"
	"taskman-api/storage"
)

type taskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *domain.Status `json:"status"`
	Deadline    *domain.Date   `json:"deadline"`
	Categories  *[]uint        `json:"categories"`
}

func listTasks(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter, err := parseTaskFilter(c)
		if err != nil {
			return writeError(c, err)
		}
		page, err := d.Pager.Parse(c)
		if err != nil {
			return writeError(c, err)
		}
		tasks, total, err := d.Tasks.List(c.Request().Context(), filter, page)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, wrapPage(d.Pager, c, page, tasks, total, taskID))
	}
}

func myTasks(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := requireUser(c, d.Auth, d.Users)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		page, err := d.Pager.Parse(c)
		if err != nil {
			return writeError(c, err)
		}
		tasks, total, err := d.Tasks.ListByOwner(c.Request().Context(), user.ID, page)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, wrapPage(d.Pager, c, page, tasks, total, taskID))
	}
}

func createTask(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := requireUser(c, d.Auth, d.Users)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		var req taskRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, err.Error())
		}

		task := domain.Task{Status: domain.StatusNew, OwnerID: &user.ID}
		if err := applyTaskRequest(&task, &req, false); err != nil {
			return writeError(c, err)
		}

		var categoryIDs []uint
		if req.Categories != nil {
			categoryIDs = *req.Categories
		}
		if err := d.Tasks.Create(c.Request().Context(), &task, categoryIDs); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func getTask(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return writeError(c, &domain.NotFoundError{Resource: "task"})
		}
		task, err := d.Tasks.Get(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func updateTask(d Deps, partial bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := requireUser(c, d.Auth, d.Users)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return writeError(c, &domain.NotFoundError{Resource: "task"})
		}
		task, err := d.Tasks.Get(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		if !canMutate(user, task.OwnerID) {
			return writeError(c, domain.ErrPermissionDenied)
		}

		var req taskRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, err.Error())
		}
		prevStatus := task.Status
		if err := applyTaskRequest(task, &req, partial); err != nil {
			return writeError(c, err)
		}

		var categoryIDs []uint
		if req.Categories != nil {
			categoryIDs = *req.Categories
		}
		if err := d.Tasks.Update(c.Request().Context(), task, categoryIDs); err != nil {
			return writeError(c, err)
		}

		if task.Status != prevStatus {
			notifyOwner(d, task)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := requireUser(c, d.Auth, d.Users)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return writeError(c, &domain.NotFoundError{Resource: "task"})
		}
		task, err := d.Tasks.Get(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		if !canMutate(user, task.OwnerID) {
			return writeError(c, domain.ErrPermissionDenied)
		}
		if err := d.Tasks.Delete(c.Request().Context(), id); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func taskStatistics(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := requireUser(c, d.Auth, d.Users)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		if !user.IsAdmin {
			return writeError(c, domain.ErrPermissionDenied)
		}
		stats, err := d.Tasks.Statistics(c.Request().Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, stats)
	}
}

// applyTaskRequest copies request fields onto the task, enforcing field rules.
// Full updates require title, status and deadline; partial ones touch only
// what the payload carries.
func applyTaskRequest(task *domain.Task, req *taskRequest, partial bool) error {
	if !partial {
		if req.Title == nil {
			return domain.NewValidationError("title", "title is required")
		}
		if req.Deadline == nil {
			return domain.NewValidationError("deadline", "deadline is required")
		}
	}
	if req.Title != nil {
		if err := domain.ValidateTitle("title", *req.Title); err != nil {
			return err
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return domain.NewValidationError("status", "invalid status")
		}
		task.Status = *req.Status
	}
	if req.Deadline != nil {
		if err := domain.ValidateDeadline(*req.Deadline); err != nil {
			return err
		}
		task.Deadline = *req.Deadline
	}
	return nil
}

// notifyOwner dispatches the status-change mail when the task has an owner
// with a registered address. Delivery runs in the background; failures are
// logged by the dispatcher and never roll back the update.
func notifyOwner(d Deps, task *domain.Task) {
	if d.Notify == nil || task.Owner == nil || task.Owner.Email == "" {
		return
	}
	subject := fmt.Sprintf("Task status changed: %s", task.Title)
	body := fmt.Sprintf("New status of the task %s has been changed to %s", task.Title, task.Status.Label())
	d.Notify.Dispatch(task.Owner.Email, subject, body)
}

func parseTaskFilter(c echo.Context) (storage.TaskFilter, error) {
	var filter storage.TaskFilter

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
	if raw := c.QueryParam("weekday"); raw != "" {
		n, ok := domain.WeekdayNumber(raw)
		if !ok {
			return filter, domain.NewValidationError("weekday", "invalid weekday: "+domain.Capitalize(raw))
		}
		filter.Weekday = &n
	}
	ordering, err := parseOrdering(c)
	if err != nil {
		return filter, err
	}
	filter.Ordering = ordering
	return filter, nil
}

func parseOrdering(c echo.Context) (storage.Ordering, error) {
	switch c.QueryParam("ordering") {
	case "", "-created_at":
		return storage.OrderNewestFirst, nil
	case "created_at":
		return storage.OrderOldestFirst, nil
	default:
		return "", domain.NewValidationError("ordering", "ordering must be created_at or -created_at")
	}
}

func taskID(t domain.Task) uint { return t.ID }
