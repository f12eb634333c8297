package mapper

import (
	"errors"
	"io"
	"net/http"

	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"
	"github.com/rs/zerolog"

	"github.com/axiskey/mapper/internal/activation"
	"github.com/axiskey/mapper/internal/editor"
	"github.com/axiskey/mapper/internal/hardware"
	"github.com/axiskey/mapper/internal/keys"
	"github.com/axiskey/mapper/internal/mapping"
)

// maxImageSize bounds HUD screenshots accepted for detection.
const maxImageSize = 8 << 20

func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		ginlogger.SetLogger(
			ginlogger.WithLogger(func(*gin.Context, zerolog.Logger) zerolog.Logger { return *webLogger }),
			ginlogger.WithSkipPath([]string{"/metrics"}),
		),
		gin.Recovery(),
	)

	if a.cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(a.metrics.handler()))
	}

	api := r.Group("/api")

	api.GET("/games", a.handleListGames)
	api.GET("/games/active", a.handleActiveGame)
	api.PUT("/games/active", a.handleSetActiveGame)

	api.GET("/profile", a.handleGetProfile)
	api.PATCH("/profile", a.handlePatchProfile)
	api.PATCH("/profile/sensitivity", a.handlePatchSensitivity)
	api.POST("/profile/controls", a.handleAddControl)
	api.PATCH("/profile/controls/:id", a.handlePatchControl)
	api.DELETE("/profile/controls/:id", a.handleRemoveControl)
	api.POST("/profile/controls/:id/steps", a.handleAddStep)
	api.PATCH("/profile/controls/:id/steps/:step", a.handlePatchStep)
	api.DELETE("/profile/controls/:id/steps/:step", a.handleRemoveStep)

	api.GET("/editor", a.handleGetEditor)
	api.PUT("/editor/mode", a.handleSetEditMode)
	api.PUT("/editor/selection", a.handleSelect)
	api.POST("/editor/canvas-click", a.handleCanvasClick)
	api.GET("/editor/drag", a.handleDragWebsocket)
	api.POST("/editor/listen", a.handleListen)
	api.DELETE("/editor/listen", a.handleCancelListen)
	api.POST("/editor/key", a.handleKey)
	api.POST("/editor/hud", a.handleDetectHUD)

	api.GET("/keys", a.handleListKeys)
	api.GET("/keys/:symbol", a.handleGetKey)

	api.GET("/config", a.handleGetConfig)
	api.PATCH("/config", a.handlePatchConfig)

	api.GET("/hardware", a.handleGetHardware)
	api.POST("/hardware", a.handleRefreshHardware)

	api.POST("/activation", a.handleActivate)
	api.GET("/activation/ws", a.handleActivationWebsocket)

	return r
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// respond writes v, or a 404 when the editor operation changed nothing.
func respond[T any](c *gin.Context, v T, ok bool) {
	if !ok {
		abort(c, http.StatusNotFound, "no active profile or unknown id")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (a *App) handleListGames(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Games())
}

func (a *App) handleActiveGame(c *gin.Context) {
	g, ok := a.store.Game(a.store.ActiveGameID())
	respond(c, g, ok)
}

func (a *App) handleSetActiveGame(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	ok := a.store.SetActiveGame(req.ID)
	a.editor.Select("")
	a.metrics.observeProfile(a.store)
	if !ok && req.ID != "" {
		abort(c, http.StatusNotFound, "unknown game")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": a.store.ActiveGameID()})
}

func (a *App) handleGetProfile(c *gin.Context) {
	p, ok := a.store.ActiveProfile()
	respond(c, p, ok)
}

type profilePatchRequest struct {
	Name *string `json:"name"`
	// BackgroundURL clears the background when empty.
	BackgroundURL *string `json:"backgroundUrl"`
}

func (a *App) handlePatchProfile(c *gin.Context) {
	var req profilePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	patch := mapping.ProfilePatch{Name: req.Name}
	if req.BackgroundURL != nil {
		bg := null.NewString(*req.BackgroundURL, *req.BackgroundURL != "")
		patch.BackgroundURL = &bg
	}
	if !a.store.MutateActiveProfile(patch) {
		abort(c, http.StatusNotFound, "no active profile")
		return
	}
	p, ok := a.store.ActiveProfile()
	respond(c, p, ok)
}

func (a *App) handlePatchSensitivity(c *gin.Context) {
	var patch mapping.SensitivityPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	s, ok := a.editor.UpdateSensitivity(patch)
	respond(c, s, ok)
}

func (a *App) handleAddControl(c *gin.Context) {
	var req struct {
		Type string   `json:"type" binding:"required"`
		X    *float64 `json:"x"`
		Y    *float64 `json:"y"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	t, err := mapping.ParseControlType(req.Type)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	x, y := mapping.DefaultX, mapping.DefaultY
	if req.X != nil {
		x = *req.X
	}
	if req.Y != nil {
		y = *req.Y
	}
	ctl, ok := a.editor.AddControlAt(t, x, y)
	a.metrics.observeProfile(a.store)
	respond(c, ctl, ok)
}

type controlPatchRequest struct {
	X         *float64                `json:"x"`
	Y         *float64                `json:"y"`
	Size      *int                    `json:"size"`
	Opacity   *int                    `json:"opacity"`
	Key       *string                 `json:"key"`
	Direction *mapping.SwipeDirection `json:"direction"`
	// Label clears the caption when empty.
	Label *string `json:"label"`
}

// handlePatchControl applies every present field as one edit. A rejected
// field leaves the control untouched.
func (a *App) handlePatchControl(c *gin.Context) {
	var req controlPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	patch := editor.ControlPatch{
		X:         req.X,
		Y:         req.Y,
		Size:      req.Size,
		Opacity:   req.Opacity,
		Key:       req.Key,
		Direction: req.Direction,
	}
	if req.Label != nil {
		label := null.NewString(*req.Label, *req.Label != "")
		patch.Label = &label
	}

	ctl, err := a.editor.PatchControl(c.Param("id"), patch)
	switch {
	case errors.Is(err, editor.ErrBadDirection):
		abort(c, http.StatusBadRequest, err.Error())
	case err != nil:
		abort(c, http.StatusNotFound, err.Error())
	default:
		c.JSON(http.StatusOK, ctl)
	}
}

func (a *App) handleRemoveControl(c *gin.Context) {
	if !a.editor.Remove(c.Param("id")) {
		abort(c, http.StatusNotFound, "no active profile or unknown id")
		return
	}
	a.metrics.observeProfile(a.store)
	c.Status(http.StatusNoContent)
}

func (a *App) handleAddStep(c *gin.Context) {
	step, ok := a.editor.AddMacroStep(c.Param("id"))
	respond(c, step, ok)
}

func (a *App) handlePatchStep(c *gin.Context) {
	var patch editor.StepPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	step, ok := a.editor.UpdateMacroStep(c.Param("id"), c.Param("step"), patch)
	respond(c, step, ok)
}

func (a *App) handleRemoveStep(c *gin.Context) {
	if !a.editor.RemoveMacroStep(c.Param("id"), c.Param("step")) {
		abort(c, http.StatusNotFound, "no active profile or unknown id")
		return
	}
	c.Status(http.StatusNoContent)
}

type editorState struct {
	EditMode   bool   `json:"editMode"`
	SelectedID string `json:"selectedId,omitempty"`
	Listening  string `json:"listening,omitempty"`
	Capture    string `json:"capture"`
}

func (a *App) editorState() editorState {
	target, state := a.editor.Listening()
	return editorState{
		EditMode:   a.editor.EditMode(),
		SelectedID: a.editor.SelectedID(),
		Listening:  target,
		Capture:    state.String(),
	}
}

func (a *App) handleGetEditor(c *gin.Context) {
	c.JSON(http.StatusOK, a.editorState())
}

func (a *App) handleSetEditMode(c *gin.Context) {
	var req struct {
		On bool `json:"on"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	a.editor.SetEditMode(req.On)
	c.JSON(http.StatusOK, a.editorState())
}

func (a *App) handleSelect(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if !a.editor.Select(req.ID) {
		abort(c, http.StatusNotFound, "unknown control")
		return
	}
	c.JSON(http.StatusOK, a.editorState())
}

func (a *App) handleCanvasClick(c *gin.Context) {
	var req struct {
		Canvas editor.Rect `json:"canvas"`
		X      float64     `json:"x"`
		Y      float64     `json:"y"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	ctl, ok := a.editor.CanvasClick(req.Canvas, req.X, req.Y)
	if !ok {
		abort(c, http.StatusConflict, "canvas clicks only add controls in edit mode")
		return
	}
	a.metrics.observeProfile(a.store)
	c.JSON(http.StatusOK, ctl)
}

func (a *App) handleListen(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if !a.editor.Listen(req.ID) {
		abort(c, http.StatusNotFound, "no listenable control with that id")
		return
	}
	c.JSON(http.StatusOK, a.editorState())
}

func (a *App) handleCancelListen(c *gin.Context) {
	a.editor.CancelListen()
	c.JSON(http.StatusOK, a.editorState())
}

func (a *App) handleKey(c *gin.Context) {
	var ev keys.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	ctl, consumed := a.editor.HandleKey(ev)
	c.JSON(http.StatusOK, gin.H{"consumed": consumed, "control": ctl})
}

func (a *App) handleDetectHUD(c *gin.Context) {
	var image []byte
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			abort(c, http.StatusBadRequest, err.Error())
			return
		}
		defer f.Close()
		image, err = io.ReadAll(io.LimitReader(f, maxImageSize))
		if err != nil {
			abort(c, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImageSize))
		if err != nil {
			abort(c, http.StatusBadRequest, err.Error())
			return
		}
		image = body
	}
	if len(image) == 0 {
		abort(c, http.StatusBadRequest, "empty image")
		return
	}

	added, err := a.DetectHUD(c.Request.Context(), image)
	if errors.Is(err, ErrHUDDisabled) {
		abort(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		hudLogger.Warn().Err(err).Msg("HUD request aborted")
		abort(c, http.StatusRequestTimeout, err.Error())
		return
	}
	if added == nil {
		added = []mapping.Control{}
	}
	c.JSON(http.StatusOK, added)
}

func (a *App) handleListKeys(c *gin.Context) {
	c.JSON(http.StatusOK, keys.Bindings())
}

func (a *App) handleGetKey(c *gin.Context) {
	sym := c.Param("symbol")
	code, ok := keys.Code(sym)
	if !ok {
		abort(c, http.StatusNotFound, "unknown key")
		return
	}
	c.JSON(http.StatusOK, keys.Binding{Symbol: sym, Code: code})
}

func (a *App) handleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, a.store.Config())
}

func (a *App) handlePatchConfig(c *gin.Context) {
	var patch mapping.AppConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if patch.Language != nil {
		switch *patch.Language {
		case mapping.LanguagePortuguese, mapping.LanguageEnglish:
		default:
			abort(c, http.StatusBadRequest, "language must be pt-BR or en-US")
			return
		}
	}
	cfg := a.store.UpdateConfig(patch)
	a.setProcTitle(cfg)
	c.JSON(http.StatusOK, cfg)
}

func (a *App) handleGetHardware(c *gin.Context) {
	c.JSON(http.StatusOK, a.Hardware())
}

func (a *App) handleRefreshHardware(c *gin.Context) {
	var hints hardware.Hints
	if err := c.ShouldBindJSON(&hints); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if hints.UserAgent == "" {
		hints.UserAgent = c.Request.UserAgent()
	}
	c.JSON(http.StatusOK, a.RefreshHardware(hints))
}

func (a *App) handleActivate(c *gin.Context) {
	var req activation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := a.Activate(c.Request.Context(), req, nil)
	switch {
	case errors.Is(err, activation.ErrAlreadyRunning):
		abort(c, http.StatusConflict, err.Error())
	case errors.Is(err, activation.ErrUnsupportedMethod):
		abort(c, http.StatusBadRequest, err.Error())
	case err != nil:
		activationLogger.Info().Err(err).Msg("activation request ended early")
		abort(c, http.StatusRequestTimeout, err.Error())
	default:
		c.JSON(http.StatusOK, res)
	}
}
