// Package api exposes battle sessions over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spiritclash/internal/battle"
	"spiritclash/internal/logging"
)

const (
	jsonKeyError = "error"

	errInvalidRequest = "invalid request"
	errNotFound       = "battle not found"
	errPartyRequired  = "party must name at least one spirit"
)

// BattleHandler groups the battle HTTP handlers.
type BattleHandler struct {
	reg *Registry
}

func NewBattleHandler(reg *Registry) *BattleHandler {
	return &BattleHandler{reg: reg}
}

// Register mounts the battle routes under g.
func (h *BattleHandler) Register(g *gin.RouterGroup) {
	g.POST("/battles", h.CreateBattle)
	g.GET("/battles/:id", h.GetBattle)
	g.GET("/battles/:id/events", h.Events)
	g.POST("/battles/:id/attack", h.Attack)
	g.POST("/battles/:id/block", h.Block)
	g.POST("/battles/:id/swap", h.Swap)
	g.DELETE("/battles/:id", h.CloseBattle)
}

// NewRouter builds the engine with the battle routes under /api.
func NewRouter(h *BattleHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	h.Register(router.Group("/api"))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.reg.Len()})
	})
	return router
}

type CreateBattlePayload struct {
	Party []string `json:"party"`
}

type AttackPayload struct {
	SkillID string `json:"skill_id"`
}

type SwapPayload struct {
	Index *int `json:"index"`
}

// CreateBattle starts a battle for the given party and returns its view.
// A battle that aborts during setup is still created; its state says so.
func (h *BattleHandler) CreateBattle(c *gin.Context) {
	var req CreateBattlePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errInvalidRequest})
		return
	}
	if len(req.Party) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errPartyRequired})
		return
	}
	s := h.reg.Create(req.Party)
	v := s.View()
	logging.Info("battle created", logging.Fields{"session": v.ID, "state": string(v.State)})
	c.JSON(http.StatusCreated, v)
}

func (h *BattleHandler) GetBattle(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// Events returns the presentation events buffered since the last call.
func (h *BattleHandler) Events(c *gin.Context) {
	evs, err := h.reg.Events(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": evs})
}

// Attack, Block and Swap forward intents. An intent the session ignores,
// because it arrived outside the player's action phase or names an invalid
// swap target, is reported with 409.
func (h *BattleHandler) Attack(c *gin.Context) {
	var req AttackPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errInvalidRequest})
		return
	}
	h.intent(c, func(s *battle.Session) bool { return s.Attack(req.SkillID) })
}

func (h *BattleHandler) Block(c *gin.Context) {
	h.intent(c, func(s *battle.Session) bool { return s.Block() })
}

func (h *BattleHandler) Swap(c *gin.Context) {
	var req SwapPayload
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errInvalidRequest})
		return
	}
	idx := *req.Index
	h.intent(c, func(s *battle.Session) bool { return s.Swap(idx) })
}

func (h *BattleHandler) CloseBattle(c *gin.Context) {
	if err := h.reg.Close(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BattleHandler) intent(c *gin.Context, apply func(*battle.Session) bool) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if !apply(s) {
		c.JSON(http.StatusConflict, s.View())
		return
	}
	c.JSON(http.StatusOK, s.View())
}

func (h *BattleHandler) session(c *gin.Context) (*battle.Session, bool) {
	s, err := h.reg.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return s, true
}

func (h *BattleHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{jsonKeyError: errNotFound})
		return
	}
	logging.Error("battle request failed", err, logging.Fields{"path": c.FullPath()})
	c.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: err.Error()})
}
