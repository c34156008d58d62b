// Package paperhttp exposes a replay engine over HTTP so remote
// clients can trade against it in paper mode.
package paperhttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mockx/internal/replay"
)

type Server struct {
	addr   string
	apiKey string
	engine *replay.Engine
	router *gin.Engine
}

// Config 描述 paper HTTP Server 的依赖。
type Config struct {
	Addr   string
	APIKey string
	Engine *replay.Engine
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine 不能为空")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:   cfg.Addr,
		apiKey: cfg.APIKey,
		engine: cfg.Engine,
		router: router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/")
	if s.apiKey != "" {
		api.Use(s.requireAPIKey)
	}
	api.GET("/tickers", s.handleTickers)
	// 符号形如 BTC/USDT，斜杠不转义，按两段路径匹配。
	api.GET("/tickers/:base", s.handleTicker)
	api.GET("/tickers/:base/:quote", s.handleTicker)
	api.GET("/balance", s.handleBalance)
	api.POST("/balance/:asset/deposit", s.handleDeposit)
	api.POST("/balance/:asset/withdrawal", s.handleWithdrawal)
	api.GET("/orders", s.handleOrders)
	api.GET("/orders/:oid", s.handleOrder)
	api.POST("/orders", s.handleCreateOrder)
	api.POST("/orders/can_execute", s.handleCanExecute)
	api.POST("/orders/:oid/cancel", s.handleCancelOrder)
	api.POST("/replay/advance", s.handleAdvance)
}

// Handler 返回底层路由，供测试直接挂载。
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requireAPIKey(c *gin.Context) {
	if c.GetHeader("x-api-key") != s.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}
	c.Next()
}

func (s *Server) handleTickers(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Tickers())
}

func (s *Server) handleTicker(c *gin.Context) {
	sym := c.Param("base")
	if quote := c.Param("quote"); quote != "" {
		sym = sym + "/" + quote
	}
	t, err := s.engine.Ticker(sym)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleBalance(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Balance())
}

func (s *Server) handleDeposit(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row, err := s.engine.Deposit(c.Param("asset"), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) handleWithdrawal(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row, err := s.engine.Withdraw(c.Param("asset"), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) handleOrders(c *gin.Context) {
	var query struct {
		Symbol string `form:"symbol"`
		Status string `form:"status"`
		Side   string `form:"side"`
		Tail   int    `form:"tail"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orders := s.engine.Orders(replay.OrderFilter{
		Symbol: query.Symbol,
		Status: query.Status,
		Side:   query.Side,
		Tail:   query.Tail,
	})
	c.JSON(http.StatusOK, orders)
}

func (s *Server) handleOrder(c *gin.Context) {
	o, err := s.engine.Order(c.Param("oid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req replay.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o, err := s.engine.CreateOrder(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (s *Server) handleCanExecute(c *gin.Context) {
	var req replay.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ok, err := s.engine.CanExecute(req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"can_execute": ok})
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	o, err := s.engine.CancelOrder(c.Param("oid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) handleAdvance(c *gin.Context) {
	var req struct {
		Steps       *int   `json:"steps"`
		ToTimestamp *int64 `json:"to_timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var ts int64
	if req.ToTimestamp != nil {
		ts = s.engine.AdvanceTo(*req.ToTimestamp)
	} else {
		// 没带 steps 默认走一步，显式 0 原地读取。
		steps := 1
		if req.Steps != nil {
			steps = *req.Steps
		}
		ts = s.engine.Advance(steps)
	}
	c.JSON(http.StatusOK, gin.H{"timestamp": ts})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, replay.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, replay.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// Start 启动 HTTP 服务，阻塞直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
