package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lingobuddy/internal/llm"
	"lingobuddy/internal/mistakes"
	"lingobuddy/internal/session"
	"lingobuddy/internal/tutor"
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

func fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}

// failFromErr maps domain errors onto the response envelope. Wrong-phase
// calls are conflicts, bad input is a 400, an unreachable model is a
// 502 the client may retry.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrMissingField),
		errors.Is(err, session.ErrNoScene),
		errors.Is(err, session.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, 10002, err.Error())
		return
	case errors.Is(err, session.ErrNotConfigured),
		errors.Is(err, session.ErrNotActive),
		errors.Is(err, session.ErrActive),
		errors.Is(err, session.ErrEnded),
		errors.Is(err, session.ErrNotEnded):
		fail(c, http.StatusConflict, 40901, err.Error())
		return
	}

	var ue *llm.UpstreamError
	if errors.As(err, &ue) {
		msg := "the language model did not answer; your message is kept, try again"
		if !ue.Retryable() {
			msg = "the language model rejected our credentials"
		}
		fail(c, http.StatusBadGateway, 50201, msg)
		return
	}

	var se *mistakes.StorageError
	if errors.As(err, &se) {
		fail(c, http.StatusInternalServerError, 50301, "storage error")
		return
	}

	fail(c, http.StatusInternalServerError, 50001, "internal error")
}

func (h *Handler) GetSession(c *gin.Context) {
	ok(c, gin.H{"session": h.Sessions.Snapshot()})
}

type configureReq struct {
	TargetLanguage string `json:"target_language" binding:"required"`
	NativeLanguage string `json:"native_language" binding:"required"`
	Level          string `json:"level" binding:"required"`
}

func (h *Handler) ConfigureSession(c *gin.Context) {
	var req configureReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	level, err := tutor.ParseLevel(req.Level)
	if err != nil {
		fail(c, http.StatusBadRequest, 10003, "level must be one of Beginner, Intermediate, Advanced")
		return
	}

	snap, err := h.Sessions.Configure(req.TargetLanguage, req.NativeLanguage, level)
	if err != nil {
		failFromErr(c, err)
		return
	}

	ok(c, gin.H{
		"session": snap,
		"scenes":  tutor.Scenes(snap.Level),
	})
}

func (h *Handler) ListScenes(c *gin.Context) {
	level, err := tutor.ParseLevel(c.Query("level"))
	if err != nil {
		fail(c, http.StatusBadRequest, 10003, "level must be one of Beginner, Intermediate, Advanced")
		return
	}
	ok(c, gin.H{"level": level, "scenes": tutor.Scenes(level)})
}

type chooseSceneReq struct {
	Scene string `json:"scene" binding:"required"`
}

func (h *Handler) ChooseScene(c *gin.Context) {
	var req chooseSceneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	snap, err := h.Sessions.ChooseScene(c.Request.Context(), req.Scene)
	if err != nil {
		failFromErr(c, err)
		return
	}

	opening := ""
	if n := len(snap.Transcript); n > 0 {
		opening = snap.Transcript[n-1].Text
	}
	ok(c, gin.H{"session": snap, "opening": opening})
}

type sendMessageReq struct {
	Message string `json:"message"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	res, err := h.Sessions.Say(c.Request.Context(), req.Message)
	if err != nil {
		failFromErr(c, err)
		return
	}

	if res.Review != nil {
		ok(c, gin.H{
			"session_ended": true,
			"review":        res.Review,
		})
		return
	}

	payload := gin.H{"reply": res.Reply}
	if res.Feedback != nil {
		payload["correction"] = res.Feedback
	}
	if res.Warning != "" {
		payload["warning"] = res.Warning
	}
	ok(c, payload)
}

func (h *Handler) GetReview(c *gin.Context) {
	rev, err := h.Sessions.Review()
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, gin.H{"review": rev})
}

func (h *Handler) ResetSession(c *gin.Context) {
	ok(c, gin.H{"session": h.Sessions.Reset()})
}
