package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/advisor/internal/pkg/errcode"
	"github.com/xxxsen/advisor/internal/pkg/response"
	"github.com/xxxsen/advisor/internal/service"
)

type AdminHandler struct {
	bulletins *service.BulletinService
	documents *service.SupportingDocService
	students  *service.StudentService
}

func NewAdminHandler(bulletins *service.BulletinService, documents *service.SupportingDocService, students *service.StudentService) *AdminHandler {
	return &AdminHandler{bulletins: bulletins, documents: documents, students: students}
}

func (h *AdminHandler) UploadBulletin(c *gin.Context) {
	up, closeFn, err := formUpload(c, "file")
	defer closeFn()
	if err != nil || up == nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	year, err := strconv.Atoi(c.PostForm("year"))
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid year")
		return
	}
	res, err := h.bulletins.Upload(c.Request.Context(), up, service.BulletinMeta{
		Year:        year,
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		UploadedBy:  getUserID(c),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *AdminHandler) ListBulletins(c *gin.Context) {
	list, err := h.bulletins.List(c.Request.Context(), c.Query("active") == "1")
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, list)
}

func (h *AdminHandler) DeleteBulletin(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.bulletins.Deactivate(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *AdminHandler) UploadDocument(c *gin.Context) {
	up, closeFn, err := formUpload(c, "file")
	defer closeFn()
	if err != nil || up == nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	doc, err := h.documents.Upload(c.Request.Context(), up, service.DocumentMeta{
		DocumentType: c.PostForm("type"),
		CourseCode:   c.PostForm("course_code"),
		Year:         c.PostForm("year"),
		Description:  c.PostForm("description"),
		UploadedBy:   getUserID(c),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *AdminHandler) ListDocuments(c *gin.Context) {
	list, err := h.documents.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, list)
}

func (h *AdminHandler) DeleteDocument(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.documents.Deactivate(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *AdminHandler) SearchStudents(c *gin.Context) {
	list, err := h.students.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, list)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, errcode.ErrInvalid, "invalid id")
		return 0, false
	}
	return id, true
}
