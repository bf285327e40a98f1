package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
	"github.com/gaushala-net/gaushala/internal/present/rest/middleware"
	"github.com/gaushala-net/gaushala/internal/present/rest/presenter"
	"github.com/gaushala-net/gaushala/internal/service"
	"github.com/gaushala-net/gaushala/internal/usecase"
)

type Handler struct {
	post         *usecase.PostUsecase
	verification *usecase.VerificationUsecase
	workshop     *usecase.WorkshopUsecase
	registration *usecase.RegistrationUsecase
	profile      *usecase.ProfileUsecase
	signal       *service.SignalService
}

func NewHandler(
	post *usecase.PostUsecase,
	verification *usecase.VerificationUsecase,
	workshop *usecase.WorkshopUsecase,
	registration *usecase.RegistrationUsecase,
	profile *usecase.ProfileUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		post:         post,
		verification: verification,
		workshop:     workshop,
		registration: registration,
		profile:      profile,
		signal:       signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.GET("/profile", h.handleGetProfile)
	api.PUT("/profile", h.handleSaveProfile)

	api.POST("/posts", h.handleSubmitPost)
	api.GET("/posts", h.handleListPosts)
	api.GET("/posts/mine", h.handleListOwnPosts)
	api.GET("/posts/:id", h.handleGetPost)
	api.PUT("/posts/:id", h.handleEditPost)
	api.DELETE("/posts/:id", h.handleDeletePost)
	api.POST("/posts/:id/attest", h.handleAttest)
	api.GET("/posts/:id/verification", h.handleVerificationStatus)
	api.GET("/posts/:id/attesters", h.handleAttesters)

	api.POST("/workshops", h.handleCreateWorkshop)
	api.GET("/workshops", h.handleFilterWorkshops)
	api.GET("/workshops/upcoming", h.handleUpcomingWorkshops)
	api.GET("/workshops/mine", h.handleMyWorkshops)
	api.GET("/workshops/:id", h.handleGetWorkshop)
	api.DELETE("/workshops/:id", h.handleDeleteWorkshop)
	api.POST("/workshops/:id/registrations", h.handleRegister)
	api.GET("/workshops/:id/registrations", h.handleRegistrationDetails)
	api.GET("/registrations/mine", h.handleMyRegistrations)

	e.GET("/realtime", h.handleRealtime)
}

// splitList reads a comma separated query parameter.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			items = append(items, strings.ToLower(s))
		}
	}
	return items
}

func parseRoleParam(c echo.Context) (gaushala.Role, bool) {
	raw := c.QueryParam("role")
	if raw == "" {
		return "", true
	}
	return gaushala.ParseRole(raw)
}

func (h *Handler) handleGetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	profile, err := h.profile.Get(ctx, middleware.IdentityFrom(ctx))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, profile)
}

func (h *Handler) handleSaveProfile(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return presenter.BadRequestMessage(c, "unreadable body")
	}

	var input usecase.ProfileInput
	if err := json.Unmarshal(body, &input); err != nil {
		return presenter.BadRequestMessage(c, "invalid profile")
	}
	// the body carries the role tag next to the details object
	details, err := gaushala.UnmarshalProfileDetails(body)
	if err != nil {
		return presenter.BadRequestMessage(c, err.Error())
	}
	input.Details = details

	profile, err := h.profile.Save(ctx, middleware.IdentityFrom(ctx), input)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, profile)
}

func (h *Handler) handleSubmitPost(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.SubmitPostInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequestMessage(c, "invalid post")
	}

	post, err := h.post.Submit(ctx, middleware.IdentityFrom(ctx), input)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, post)
}

func (h *Handler) handleListPosts(c echo.Context) error {
	ctx := c.Request().Context()

	role, ok := parseRoleParam(c)
	if !ok {
		return presenter.BadRequestMessage(c, "invalid role parameter")
	}

	posts, err := h.post.List(ctx, domain.PostFilter{
		Tags:      splitList(c.QueryParam("tags")),
		OwnerRole: role,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, posts)
}

func (h *Handler) handleListOwnPosts(c echo.Context) error {
	ctx := c.Request().Context()

	posts, err := h.post.ListOwn(ctx, middleware.IdentityFrom(ctx))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, posts)
}

func (h *Handler) handleGetPost(c echo.Context) error {
	ctx := c.Request().Context()

	post, err := h.post.Get(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, post)
}

func (h *Handler) handleEditPost(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.EditPostInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequestMessage(c, "invalid post")
	}

	post, err := h.post.Edit(ctx, middleware.IdentityFrom(ctx), c.Param("id"), input)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, post)
}

func (h *Handler) handleDeletePost(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.post.Delete(ctx, middleware.IdentityFrom(ctx), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleAttest(c echo.Context) error {
	ctx := c.Request().Context()

	set, err := h.verification.AttestAs(ctx, middleware.IdentityFrom(ctx), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"verified": set})
}

func (h *Handler) handleVerificationStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := h.verification.Status(ctx, middleware.IdentityFrom(ctx), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, status)
}

func (h *Handler) handleAttesters(c echo.Context) error {
	ctx := c.Request().Context()

	attesters, err := h.verification.Attesters(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, attesters)
}

func (h *Handler) handleCreateWorkshop(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.CreateWorkshopInput
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequestMessage(c, "invalid workshop")
	}

	workshop, err := h.workshop.Create(ctx, middleware.IdentityFrom(ctx), input)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, workshop)
}

func (h *Handler) handleFilterWorkshops(c echo.Context) error {
	ctx := c.Request().Context()

	role, ok := parseRoleParam(c)
	if !ok {
		return presenter.BadRequestMessage(c, "invalid role parameter")
	}

	workshops, err := h.workshop.Filter(ctx, middleware.IdentityFrom(ctx), domain.WorkshopFilter{
		Tags:      splitList(c.QueryParam("tags")),
		OwnerRole: role,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, workshops)
}

func (h *Handler) handleUpcomingWorkshops(c echo.Context) error {
	ctx := c.Request().Context()

	workshops, err := h.workshop.Upcoming(ctx, middleware.IdentityFrom(ctx))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, workshops)
}

func (h *Handler) handleMyWorkshops(c echo.Context) error {
	ctx := c.Request().Context()

	workshops, err := h.workshop.Mine(ctx, middleware.IdentityFrom(ctx))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, workshops)
}

func (h *Handler) handleGetWorkshop(c echo.Context) error {
	ctx := c.Request().Context()

	workshop, err := h.workshop.Get(ctx, middleware.IdentityFrom(ctx), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, workshop)
}

func (h *Handler) handleDeleteWorkshop(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.workshop.Delete(ctx, middleware.IdentityFrom(ctx), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	registration, err := h.registration.Register(ctx, middleware.IdentityFrom(ctx), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, registration)
}

func (h *Handler) handleRegistrationDetails(c echo.Context) error {
	ctx := c.Request().Context()

	registrations, err := h.registration.Details(ctx, middleware.IdentityFrom(ctx), c.Param("id"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, registrations)
}

func (h *Handler) handleMyRegistrations(c echo.Context) error {
	ctx := c.Request().Context()

	workshops, err := h.registration.MyRegistrations(ctx, middleware.IdentityFrom(ctx))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, workshops)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type      string   `json:"type"`
	Resources []string `json:"resources"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx := c.Request().Context()

	input := make(chan []string)
	output := make(chan gaushala.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Resources:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Resources),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
