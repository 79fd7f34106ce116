package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/advisor/internal/middleware"
	"github.com/xxxsen/advisor/internal/pkg/jwt"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Chat      *ChatHandler
	Students  *StudentHandler
	Admin     *AdminHandler
	Files     *FileHandler
	JWTSecret []byte
	// ChatInterval throttles chat turns per caller; zero disables it.
	ChatInterval time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/login", deps.Auth.Login)
	api.GET("/files/*key", deps.Files.Get)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.POST("/auth/logout", deps.Auth.Logout)

	student := authGroup.Group("")
	student.Use(middleware.RequireRole(jwt.RoleStudent))
	student.POST("/chat/messages", middleware.RateLimit(deps.ChatInterval), deps.Chat.Send)
	student.GET("/chat/messages", deps.Chat.History)
	student.DELETE("/chat", deps.Chat.Clear)
	student.DELETE("/chat/bulletin", deps.Chat.RemoveBulletin)
	student.GET("/students/me/progress", deps.Students.Progress)
	student.GET("/students/me/prerequisites", deps.Students.Prerequisites)
	student.GET("/students/me/conflicts", deps.Students.Conflicts)
	student.GET("/students/me/gpa", deps.Students.GPA)
	student.POST("/students/me/gpa/what-if", deps.Students.WhatIf)
	student.GET("/students/me/gpa/needed", deps.Students.Needed)

	admin := authGroup.Group("/admin")
	admin.Use(middleware.RequireRole(jwt.RoleAdmin))
	admin.POST("/bulletins", deps.Admin.UploadBulletin)
	admin.GET("/bulletins", deps.Admin.ListBulletins)
	admin.DELETE("/bulletins/:id", deps.Admin.DeleteBulletin)
	admin.POST("/documents", deps.Admin.UploadDocument)
	admin.GET("/documents", deps.Admin.ListDocuments)
	admin.DELETE("/documents/:id", deps.Admin.DeleteDocument)
	admin.GET("/students", deps.Admin.SearchStudents)
}
