package handlers

import (
	"github.com/gin-gonic/gin"

	"social-service/internal/middleware"
	"social-service/internal/models"
)

// Set groups every REST handler for route registration.
type Set struct {
	Users       *UserHandler
	Chats       *ChatHandler
	Messages    *MessageHandler
	Communities *CommunityHandler
	Posts       *PostHandler
	Comments    *CommentHandler
}

// RegisterRoutes mounts the REST API on api. Everything except register and
// login sits behind auth; limit runs after auth so it can key on the caller.
func RegisterRoutes(api gin.IRouter, h Set, auth, limit gin.HandlerFunc) {
	user := api.Group("/user")
	user.POST("/register", limit, h.Users.Register)
	user.POST("/login", limit, h.Users.Login)
	user.Use(auth, limit)
	user.GET("/all", middleware.RequireRole(h.Users.users, models.RoleAdmin), h.Users.List)
	user.GET("/me", h.Users.Me)
	user.PATCH("/me", h.Users.UpdateMe)
	user.PUT("/me/interests", h.Users.SetInterests)
	user.POST("/me/password", h.Users.ChangePassword)
	user.GET("/:id", h.Users.Get)
	user.POST("/:id/follow", h.Users.ToggleFollow)
	user.GET("/:id/followers", h.Users.Followers)
	user.GET("/:id/following", h.Users.Following)

	chat := api.Group("/chat", auth, limit)
	chat.POST("", h.Chats.AccessChat)
	chat.GET("", h.Chats.ListChats)
	chat.POST("/group", h.Chats.CreateGroup)
	chat.PUT("/rename", h.Chats.RenameGroup)
	chat.PUT("/avatar", h.Chats.SetGroupAvatar)
	chat.PUT("/count", h.Chats.SetCount)
	chat.PUT("/addMember", h.Chats.AddMember)
	chat.PUT("/removeMember", h.Chats.RemoveMember)
	chat.GET("/:chatId", h.Chats.GetChat)
	chat.DELETE("/:chatId", h.Chats.DeleteChat)

	message := api.Group("/message", auth, limit)
	message.POST("", h.Messages.Send)
	message.GET("/:chatId", h.Messages.List)

	community := api.Group("/community", auth, limit)
	community.POST("/create", h.Communities.Create)
	community.GET("/all", h.Communities.List)
	community.GET("/me", h.Communities.ListMine)
	community.GET("/trending", h.Communities.Trending)
	community.GET("/recommended", h.Communities.Recommended)
	community.GET("/search", h.Communities.Search)
	community.POST("/by-categories", h.Communities.ByCategories)
	community.GET("/name/:name", h.Communities.GetByName)
	community.GET("/:id", h.Communities.Get)
	community.PUT("/:id", h.Communities.Update)
	community.DELETE("/:id", h.Communities.Delete)
	community.POST("/:id/join", h.Communities.Join)
	community.POST("/:id/leave", h.Communities.Leave)
	community.POST("/:id/moderators", h.Communities.AddModerator)
	community.DELETE("/:id/moderators", h.Communities.RemoveModerator)
	community.GET("/:id/categories", h.Communities.ListCategories)
	community.POST("/:id/categories", h.Communities.CreateCategory)
	community.DELETE("/:id/categories/:categoryId", h.Communities.DeleteCategory)

	post := api.Group("/post", auth, limit)
	post.POST("/create", h.Posts.Create)
	post.GET("/all", h.Posts.ListAll)
	post.GET("/community/:communityId", h.Posts.ListByCommunity)
	post.GET("/:id", h.Posts.Get)
	post.DELETE("/:id", h.Posts.Delete)
	post.PUT("/:id/like", h.Posts.ToggleLike)

	comment := api.Group("/comment", auth, limit)
	comment.POST("", h.Comments.Create)
	comment.GET("/post/:postId", h.Comments.ListForPost)
	comment.GET("/:id", h.Comments.Get)
	comment.GET("/:id/replies", h.Comments.ListReplies)
	comment.PUT("/:id", h.Comments.Update)
	comment.DELETE("/:id", h.Comments.Delete)
	comment.POST("/:id/like", h.Comments.ToggleLike)
}
