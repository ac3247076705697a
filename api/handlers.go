package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const requestBodyMaxSize = 1 << 20

// Deps bundles everything the handlers need.
type Deps struct {
	Tasks      TaskStore
	SubTasks   SubTaskStore
	Categories CategoryStore
	Users      UserStore
	Auth       Authenticator
	Tokens     *TokenIssuer
	Blacklist  Blacklist
	Notify     Dispatcher
	Pager      *Paginator
	Logger     *log.Logger
	Ping       func(ctx context.Context) error
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", healthz(d))

	e.GET("/tasks/", listTasks(d))
	e.POST("/tasks/", createTask(d))
	e.GET("/tasks/statistics/", taskStatistics(d))
	e.GET("/tasks/my/", myTasks(d))
	e.GET("/tasks/:id/", getTask(d))
	e.PUT("/tasks/:id/", updateTask(d, false))
	e.PATCH("/tasks/:id/", updateTask(d, true))
	e.DELETE("/tasks/:id/", deleteTask(d))

	e.GET("/subtasks/", listSubTasks(d))
	e.POST("/subtasks/", createSubTask(d))
	e.GET("/subtasks/my/", mySubTasks(d))
	e.GET("/subtasks/:id/", getSubTask(d))
	e.PUT("/subtasks/:id/", updateSubTask(d, false))
	e.PATCH("/subtasks/:id/", updateSubTask(d, true))
	e.DELETE("/subtasks/:id/", deleteSubTask(d))

	e.GET("/categories/", listCategories(d))
	e.POST("/categories/", createCategory(d))
	e.GET("/categories/:id/", getCategory(d))
	e.PUT("/categories/:id/", renameCategory(d))
	e.PATCH("/categories/:id/", renameCategory(d))
	e.DELETE("/categories/:id/", deleteCategory(d))
	e.GET("/categories/:id/count_tasks/", countCategoryTasks(d))

	e.POST("/api/token/", issueToken(d))
	e.POST("/api/token/refresh/", refreshToken(d))
	e.POST("/auth/register/", registerUser(d))
	e.POST("/auth/logout/", logout(d))
}

func healthz(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if d.Ping != nil {
			if err := d.Ping(c.Request().Context()); err != nil {
				return c.String(http.StatusServiceUnavailable, err.Error())
			}
		}
		return c.NoContent(http.StatusOK)
	}
}

// decodeBody reads a size-capped JSON body, rejecting unknown fields.
func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid body")
	}
	return nil
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
