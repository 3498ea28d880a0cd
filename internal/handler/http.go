package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/middleware"
	"bergerie-server/internal/models"
	"bergerie-server/internal/service"
)

// BergerieHandler обрабатывает HTTP запросы bergerie-сервера.
type BergerieHandler struct {
	bergerieService     service.BergerieService
	postService         service.PostService
	interactionService  service.InteractionService
	notificationService service.NotificationService
	userService         service.UserService
	logger              *zap.Logger
	jwtSecret           string
}

// NewBergerieHandler создает новый BergerieHandler.
func NewBergerieHandler(
	bergerieService service.BergerieService,
	postService service.PostService,
	interactionService service.InteractionService,
	notificationService service.NotificationService,
	userService service.UserService,
	jwtSecret string,
	logger *zap.Logger,
) *BergerieHandler {
	return &BergerieHandler{
		bergerieService:     bergerieService,
		postService:         postService,
		interactionService:  interactionService,
		notificationService: notificationService,
		userService:         userService,
		logger:              logger.Named("BergerieHandler"),
		jwtSecret:           jwtSecret,
	}
}

// RegisterRoutes регистрирует маршруты bergerie-сервера.
func (h *BergerieHandler) RegisterRoutes(e *echo.Echo) {
	authMiddleware := middleware.JWTAuthMiddleware(h.jwtSecret, h.logger)

	// --- Публичные read-маршруты ---
	e.GET("/bergeries", h.listBergeries)
	e.GET("/bergeries/search", h.searchBergeries)
	e.GET("/bergeries/:id", h.getBergerie)
	e.GET("/bergeries/:id/posts", h.listBergeriePosts)
	e.GET("/posts/:id", h.getPost)
	e.GET("/posts/:id/comments", h.listComments)
	e.GET("/users/:id", h.getUser)

	// --- Маршруты бержери (требуют аутентификации) ---
	bergeriesGroup := e.Group("/bergeries", authMiddleware)
	{
		bergeriesGroup.POST("", h.createBergerie)
		bergeriesGroup.PATCH("/:id", h.updateBergerie)
		bergeriesGroup.DELETE("/:id", h.deleteBergerie)
		bergeriesGroup.GET("/:id/followers", h.listFollowers)
		bergeriesGroup.GET("/:id/interaction-status", h.getInteractionStatus)
		bergeriesGroup.POST("/:id/like", h.toggleBergerieLike)
		bergeriesGroup.POST("/:id/follow", h.toggleFollow)
	}

	// --- Маршруты постов и комментариев ---
	postsGroup := e.Group("/posts", authMiddleware)
	{
		postsGroup.POST("", h.createPost)
		postsGroup.PATCH("/:id", h.updatePost)
		postsGroup.DELETE("/:id", h.deletePost)
		postsGroup.POST("/:id/like", h.togglePostLike)
		postsGroup.POST("/:id/comments", h.addComment)
	}

	// --- Маршруты текущего пользователя ---
	meGroup := e.Group("/me", authMiddleware)
	{
		meGroup.GET("/feed", h.feed)
		meGroup.GET("/likes", h.listMyLikes)
		meGroup.GET("/followed-bergeries", h.listFollowedBergeries)
	}

	// --- Уведомления ---
	notificationsGroup := e.Group("/notifications", authMiddleware)
	{
		notificationsGroup.GET("", h.listNotifications)
		notificationsGroup.GET("/unread-count", h.countUnread)
		notificationsGroup.POST("/:id/read", h.markNotificationRead)
		notificationsGroup.POST("/read-all", h.markAllNotificationsRead)
		notificationsGroup.DELETE("/:id", h.deleteNotification)
	}
}

// --- Вспомогательные функции --- //

// getUserIDFromContext извлекает userID из контекста запроса.
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userIDVal := c.Request().Context().Value(models.UserContextKey)
	if userIDVal == nil {
		return uuid.Nil, fmt.Errorf("user_id не найден в контексте")
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("неверный тип user_id в контексте: %T", userIDVal)
	}
	if userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("невалидный user_id (nil) в контексте")
	}
	return userID, nil
}

func parseIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID format")
	}
	return id, nil
}

// parsePagination читает limit/cursor из query. Лимит сверх 100 обрезается.
func parsePagination(c echo.Context) (cursor string, limit int, err error) {
	cursor = c.QueryParam("cursor")
	limit = 20
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, parseErr := strconv.Atoi(limitStr)
		if parseErr != nil || parsed <= 0 {
			return "", 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid 'limit' parameter")
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}
	return cursor, limit, nil
}

func handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		apiErr = APIError{Message: "Unauthorized"}
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		apiErr = APIError{Message: "Forbidden"}
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrBergerieNotFound),
		errors.Is(err, models.ErrPostNotFound),
		errors.Is(err, models.ErrUserNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, service.ErrInvalidTargetType),
		errors.Is(err, service.ErrEmptyComment),
		errors.Is(err, interfaces.ErrInvalidCursor):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	default:
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}
	return c.JSON(statusCode, apiErr)
}

// --- Обработчики бержери --- //

func (h *BergerieHandler) createBergerie(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}

	var req CreateBergerieRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: err.Error()})
	}

	bergerie, err := h.bergerieService.CreateBergerie(c.Request().Context(), userID, req.Name, req.Description, req.Region, req.CoverURL)
	if err != nil {
		h.logger.Error("Error creating bergerie", zap.String("userID", userID.String()), zap.Error(err))
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, toBergerieResponse(bergerie))
}

func (h *BergerieHandler) getBergerie(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	bergerie, err := h.bergerieService.GetBergerie(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBergerieResponse(bergerie))
}

func (h *BergerieHandler) updateBergerie(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateBergerieRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: err.Error()})
	}

	bergerie, err := h.bergerieService.UpdateBergerie(c.Request().Context(), userID, id, service.UpdateBergerieInput{
		Name:        req.Name,
		Description: req.Description,
		Region:      req.Region,
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBergerieResponse(bergerie))
}

func (h *BergerieHandler) deleteBergerie(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.bergerieService.DeleteBergerie(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BergerieHandler) listBergeries(c echo.Context) error {
	cursor, limit, err := parsePagination(c)
	if err != nil {
		return err
	}

	bergeries, nextCursor, err := h.bergerieService.ListBergeries(c.Request().Context(), cursor, limit)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, PaginatedResponse{
		Data:       toBergerieResponses(bergeries),
		NextCursor: nextCursor,
	})
}

// searchBergeries ищет бержери по имени. Пустой 'q' - ошибка запроса.
func (h *BergerieHandler) searchBergeries(c echo.Context) error {
	term := c.QueryParam("q")
	if term == "" {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Missing 'q' parameter"})
	}
	cursor, limit, err := parsePagination(c)
	if err != nil {
		return err
	}

	bergeries, nextCursor, err := h.bergerieService.SearchBergeries(c.Request().Context(), term, cursor, limit)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, PaginatedResponse{
		Data:       toBergerieResponses(bergeries),
		NextCursor: nextCursor,
	})
}

// --- Обработчики пользователей --- //

func (h *BergerieHandler) getUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// --- Обработчики взаимодействий --- //

func (h *BergerieHandler) toggleBergerieLike(c echo.Context) error {
	return h.toggleLike(c, models.TargetTypeBergerie)
}

func (h *BergerieHandler) togglePostLike(c echo.Context) error {
	return h.toggleLike(c, models.TargetTypePost)
}

func (h *BergerieHandler) toggleLike(c echo.Context, targetType models.TargetType) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	liked, err := h.interactionService.ToggleLike(c.Request().Context(), userID, targetID, targetType)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.Error("Error toggling like",
				zap.String("userID", userID.String()),
				zap.String("targetID", targetID.String()),
				zap.String("targetType", string(targetType)),
				zap.Error(err))
		}
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ToggleResponse{Active: liked})
}

func (h *BergerieHandler) toggleFollow(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	bergerieID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	following, err := h.interactionService.ToggleFollow(c.Request().Context(), userID, bergerieID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.Error("Error toggling follow",
				zap.String("userID", userID.String()),
				zap.String("bergerieID", bergerieID.String()),
				zap.Error(err))
		}
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ToggleResponse{Active: following})
}

func (h *BergerieHandler) getInteractionStatus(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	bergerieID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	status, err := h.interactionService.GetInteractionStatus(c.Request().Context(), userID, bergerieID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, InteractionStatusResponse{
		IsLiked:     status.IsLiked,
		IsFollowing: status.IsFollowing,
	})
}

func (h *BergerieHandler) listMyLikes(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	cursor, limit, err := parsePagination(c)
	if err != nil {
		return err
	}

	var targetType *models.TargetType
	if typeStr := c.QueryParam("target_type"); typeStr != "" {
		tt := models.TargetType(typeStr)
		if !tt.Valid() {
			return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid 'target_type' parameter"})
		}
		targetType = &tt
	}

	likes, nextCursor, err := h.interactionService.ListLikedByUser(c.Request().Context(), userID, targetType, cursor, limit)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, PaginatedResponse{Data: likes, NextCursor: nextCursor})
}

func (h *BergerieHandler) listFollowedBergeries(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	cursor, limit, err := parsePagination(c)
	if err != nil {
		return err
	}

	followed, nextCursor, err := h.interactionService.ListFollowedBergeries(c.Request().Context(), userID, cursor, limit)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, PaginatedResponse{Data: followed, NextCursor: nextCursor})
}

func (h *BergerieHandler) listFollowers(c echo.Context) error {
	bergerieID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	cursor, limit, err := parsePagination(c)
	if err != nil {
		return err
	}

	followers, nextCursor, err := h.interactionService.ListFollowers(c.Request().Context(), bergerieID, cursor, limit)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, PaginatedResponse{Data: followers, NextCursor: nextCursor})
}

// --- Обработчики постов --- //

func (h *BergerieHandler) createPost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}

	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: err.Error()})
	}

	post, err := h.postService.CreatePost(c.Request().Context(), userID, req.BergerieID, req.Caption, req.MediaURLs)
	if err != nil {
		if !errors.Is(err, models.ErrBergerieNotFound) && !errors.Is(err, models.ErrForbidden) {
			h.logger.Error("Error creating post", zap.String("userID", userID.String()), zap.Error(err))
		}
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toPostResponse(post))
}

func (h *BergerieHandler) getPost(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	post, err := h.postService.GetPost(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *BergerieHandler) updatePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: err.Error()})
	}

	post, err := h.postService.UpdatePost(c.Request().Context(), userID, id, service.UpdatePostInput{
		Caption:   req.Caption,
		MediaURLs: req.MediaURLs,
	})
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *BergerieHandler) deletePost(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.postService.DeletePost(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BergerieHandler) listBergeriePosts(c echo.Context) error {
	bergerieID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	cursor, limit, err := parsePagination(c)
	if err != nil {
		return err
	}

	posts, nextCursor, err := h.postService.ListByBergerie(c.Request().Context(), bergerieID, cursor, limit)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, PaginatedResponse{
		Data:       toPostResponses(posts),
		NextCursor: nextCursor,
	})
}

func (h *BergerieHandler) feed(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	cursor, limit, err := parsePagination(c)
	if err != nil {
		return err
	}

	posts, nextCursor, err := h.postService.Feed(c.Request().Context(), userID, cursor, limit)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, PaginatedResponse{
		Data:       toPostResponses(posts),
		NextCursor: nextCursor,
	})
}

// --- Обработчики комментариев --- //

func (h *BergerieHandler) addComment(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: err.Error()})
	}

	comment, err := h.postService.AddComment(c.Request().Context(), userID, postID, req.Text)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *BergerieHandler) listComments(c echo.Context) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	cursor, limit, err := parsePagination(c)
	if err != nil {
		return err
	}

	comments, nextCursor, err := h.postService.ListComments(c.Request().Context(), postID, cursor, limit)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, PaginatedResponse{Data: comments, NextCursor: nextCursor})
}

// --- Обработчики уведомлений --- //

func (h *BergerieHandler) listNotifications(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	cursor, limit, err := parsePagination(c)
	if err != nil {
		return err
	}

	notifications, nextCursor, err := h.notificationService.ListNotifications(c.Request().Context(), userID, cursor, limit)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, PaginatedResponse{Data: notifications, NextCursor: nextCursor})
}

func (h *BergerieHandler) countUnread(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}

	count, err := h.notificationService.CountUnread(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, UnreadCountResponse{Count: count})
}

func (h *BergerieHandler) markNotificationRead(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notificationService.MarkRead(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BergerieHandler) markAllNotificationsRead(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}

	if err := h.notificationService.MarkAllRead(c.Request().Context(), userID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BergerieHandler) deleteNotification(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, APIError{Message: err.Error()})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notificationService.DeleteNotification(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
