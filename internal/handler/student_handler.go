package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/advisor/internal/model"
	"github.com/xxxsen/advisor/internal/pkg/errcode"
	"github.com/xxxsen/advisor/internal/pkg/response"
	"github.com/xxxsen/advisor/internal/service"
)

type StudentHandler struct {
	students *service.StudentService
	advising *service.AdvisingService
}

func NewStudentHandler(students *service.StudentService, advising *service.AdvisingService) *StudentHandler {
	return &StudentHandler{students: students, advising: advising}
}

func (h *StudentHandler) Progress(c *gin.Context) {
	snap, err := h.students.Progress(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, snap)
}

func (h *StudentHandler) Prerequisites(c *gin.Context) {
	res, err := h.advising.CheckPrerequisites(c.Request.Context(), getUserID(c), c.Query("course"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *StudentHandler) Conflicts(c *gin.Context) {
	year := 0
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, errcode.ErrInvalid, "invalid year")
			return
		}
		year = v
	}
	res, err := h.advising.CheckConflicts(c.Request.Context(), getUserID(c), c.Query("course"), c.Query("term"), year)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *StudentHandler) GPA(c *gin.Context) {
	res, err := h.advising.CurrentGPA(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

type whatIfRequest struct {
	Courses []model.HypotheticalCourse `json:"courses"`
}

func (h *StudentHandler) WhatIf(c *gin.Context) {
	var req whatIfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	res, err := h.advising.WhatIf(c.Request.Context(), getUserID(c), req.Courses)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *StudentHandler) Needed(c *gin.Context) {
	target, err := strconv.ParseFloat(c.Query("target"), 64)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid target")
		return
	}
	remaining, err := strconv.Atoi(c.Query("remaining"))
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid remaining")
		return
	}
	res, err := h.advising.GPANeeded(c.Request.Context(), getUserID(c), target, remaining)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}
