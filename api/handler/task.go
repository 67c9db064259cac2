package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tidyhome/backend/domain"
	"github.com/tidyhome/backend/pkg/httpcontext"
	reminderUC "github.com/tidyhome/backend/usecase/reminder"
	taskUC "github.com/tidyhome/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc        *taskUC.UseCase
	reminders *reminderUC.UseCase
	window    time.Duration
}

func NewTaskHandler(uc *taskUC.UseCase, reminders *reminderUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, window time.Duration) *TaskHandler {
	if window <= 0 {
		window = reminderUC.DefaultWindow
	}
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		reminders:   reminders,
		window:      window,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var in taskUC.CreateInput
	if err := json.Unmarshal(ctx.PostBody(), &in); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, userID, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	taskID, _ := ctx.UserValue("id").(string)
	if taskID == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	in, ok := h.parseUpdate(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, userID, taskID, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	taskID, _ := ctx.UserValue("id").(string)
	if taskID == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, userID, taskID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Tasks due within the lookahead window
// @Tags tasks
// @Router /api/v1/tasks/due [get]
func (h *TaskHandler) GetDueTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	window := h.window
	if raw := string(ctx.QueryArgs().Peek("window")); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			window = time.Duration(minutes) * time.Minute
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	due, err := h.reminders.Due(stdCtx, userID, time.Now(), window)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, due)
}

// parseUpdate accepts either a JSON body or a multipart form; the multipart
// variant is how the web client attaches an image to a task.
func (h *TaskHandler) parseUpdate(ctx *fasthttp.RequestCtx) (taskUC.UpdateInput, bool) {
	var in taskUC.UpdateInput

	contentType := ctx.Request.Header.ContentType()
	if bytes.HasPrefix(contentType, []byte("multipart/form-data")) {
		return h.parseMultipartUpdate(ctx)
	}

	if err := json.Unmarshal(ctx.PostBody(), &in); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return in, false
	}
	return in, true
}

func (h *TaskHandler) parseMultipartUpdate(ctx *fasthttp.RequestCtx) (taskUC.UpdateInput, bool) {
	var in taskUC.UpdateInput

	form, err := ctx.MultipartForm()
	if err != nil {
		h.respondInvalid(ctx, "invalid multipart form")
		return in, false
	}

	value := func(key string) *string {
		if vals, ok := form.Value[key]; ok && len(vals) > 0 {
			v := vals[0]
			return &v
		}
		return nil
	}

	in.Title = value("title")
	in.ScheduledTime = value("scheduled_time")
	in.Frequency = value("frequency")

	if v := value("type"); v != nil {
		t := domain.TaskType(*v)
		in.Type = &t
	}
	if v := value("scheduled_at"); v != nil {
		parsed, err := time.Parse(time.RFC3339, *v)
		if err != nil {
			h.respondInvalid(ctx, "invalid scheduled_at")
			return in, false
		}
		in.ScheduledAt = &parsed
	}
	if v := value("day_of_week"); v != nil {
		day, err := strconv.Atoi(*v)
		if err != nil {
			h.respondInvalid(ctx, "invalid day_of_week")
			return in, false
		}
		in.DayOfWeek = &day
	}
	if v := value("day_of_month"); v != nil {
		day, err := strconv.Atoi(*v)
		if err != nil {
			h.respondInvalid(ctx, "invalid day_of_month")
			return in, false
		}
		in.DayOfMonth = &day
	}
	if v := value("is_completed"); v != nil {
		completed, err := strconv.ParseBool(*v)
		if err != nil {
			h.respondInvalid(ctx, "invalid is_completed")
			return in, false
		}
		in.IsCompleted = &completed
	}

	if files, ok := form.File["image"]; ok && len(files) > 0 {
		header := files[0]
		file, err := header.Open()
		if err != nil {
			h.respondInvalid(ctx, "unreadable image upload")
			return in, false
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			h.respondInvalid(ctx, "unreadable image upload")
			return in, false
		}
		in.Image = &taskUC.Attachment{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	return in, true
}
