// Package api exposes the health monitor over HTTP: inspection endpoints,
// component registration and heartbeat calls, a websocket log stream, and a
// thin passthrough to the binary control gateway.
package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/TLimoges33/Syn-OS-sub017/internal/api/docs"
	"github.com/TLimoges33/Syn-OS-sub017/internal/gate"
	"github.com/TLimoges33/Syn-OS-sub017/internal/model"
	"github.com/TLimoges33/Syn-OS-sub017/internal/monitor"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// maxReadChunk bounds a single gateway read through the HTTP surface.
const maxReadChunk = 4096

// API is the HTTP surface of the monitor.
type API struct {
	mon     *monitor.Monitor
	gateway *gate.Gateway
	hub     *Hub
	router  *gin.Engine
	server  *http.Server
	logger  *slog.Logger
	port    int
	host    string
}

// NewAPI creates the HTTP surface over a monitor and its gateway.
// @title           SynOS Health Monitor API
// @version         1.0
// @description     Control and inspection surface for the component health monitor
// @host      localhost:8090
// @BasePath  /
func NewAPI(mon *monitor.Monitor, gateway *gate.Gateway, logger *slog.Logger, port int, hostAddr string) *API {
	if logger == nil {
		logger = slog.Default()
	}

	docs.SwaggerInfo.Title = "SynOS Health Monitor API"
	docs.SwaggerInfo.Description = "Control and inspection surface for the component health monitor"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", hostAddr, port)
	docs.SwaggerInfo.BasePath = ""
	docs.SwaggerInfo.Schemes = []string{"http"}

	api := &API{
		mon:     mon,
		gateway: gateway,
		hub:     NewHub(logger),
		router:  gin.Default(),
		logger:  logger,
		port:    port,
		host:    hostAddr,
	}

	mon.SetLogHook(api.hub.BroadcastEntry)
	api.setupRoutes()

	return api
}

// setupRoutes configures all the API routes
func (a *API) setupRoutes() {
	a.router.GET("/health", a.healthCheck)
	a.router.GET("/status", a.getStatus)

	components := a.router.Group("/components")
	{
		components.GET("", a.getComponents)
		components.POST("", a.registerComponent)
		components.GET("/:name", a.getComponent)
		components.DELETE("/:name", a.unregisterComponent)
		components.POST("/:name/heartbeat", a.heartbeat)
		components.POST("/:name/health", a.updateHealth)
		components.POST("/:name/enabled", a.setEnabled)
	}

	logs := a.router.Group("/logs")
	{
		logs.GET("", a.getLogs)
		logs.POST("", a.appendLog)
		logs.PUT("/level", a.setLogLevel)
		logs.GET("/stream", a.streamLogs)
	}

	a.router.GET("/events", a.getEvents)

	gateway := a.router.Group("/gateway")
	{
		gateway.POST("/open", a.gatewayOpen)
		gateway.POST("/close", a.gatewayClose)
		gateway.GET("/read", a.gatewayRead)
		gateway.POST("/write", a.gatewayWrite)
		gateway.POST("/command", a.gatewayCommand)
	}

	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	url := ginSwagger.URL("/swagger.json")
	a.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))
}

// Start starts the API server and the log stream hub.
func (a *API) Start() error {
	go a.hub.Run()

	addr := fmt.Sprintf("%s:%d", a.host, a.port)
	a.server = &http.Server{
		Addr:    addr,
		Handler: a.router,
	}

	return a.server.ListenAndServe()
}

// Stop shuts the API server and hub down.
func (a *API) Stop(ctx context.Context) error {
	a.hub.Shutdown()
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (a *API) Router() http.Handler {
	return a.router
}

type registerRequest struct {
	Name    string `json:"name" binding:"required"`
	State   string `json:"state"`
	Enabled *bool  `json:"enabled"`
}

type healthUpdateRequest struct {
	Delta *int `json:"delta"`
	Score *int `json:"score"`
}

type enabledRequest struct {
	Enabled bool `json:"enabled"`
}

type appendLogRequest struct {
	Level      string `json:"level" binding:"required"`
	Category   string `json:"category" binding:"required"`
	CallerID   int32  `json:"caller_id"`
	CallerName string `json:"caller_name"`
	Message    string `json:"message" binding:"required"`
}

type logLevelRequest struct {
	Level string `json:"level" binding:"required"`
}

type commandRequest struct {
	Op      uint16 `json:"op" binding:"required"`
	Payload string `json:"payload"`
}

// healthCheck handles GET /health
// @Summary      Health check
// @Description  Check if the monitor API is running
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (a *API) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// getStatus handles GET /status
// @Summary      Get system status
// @Description  Current metrics snapshot, recent log/event tails, and host info
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /status [get]
func (a *API) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":    a.mon.Metrics(),
		"components": a.mon.Components(),
		"logs":       a.mon.Logs(20),
		"events":     a.mon.Events(20),
		"host":       hostInfo(c.Request.Context()),
	})
}

// hostInfo enriches the status dump with machine-level context. Inspection
// only; nothing here feeds scoring.
func hostInfo(ctx context.Context) gin.H {
	info := gin.H{}

	if hostStat, err := host.InfoWithContext(ctx); err == nil {
		info["hostname"] = hostStat.Hostname
		info["os"] = hostStat.OS
		info["platform"] = hostStat.Platform
		info["uptime_seconds"] = hostStat.Uptime
	}
	if memStat, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info["memory_total"] = memStat.Total
		info["memory_used_percent"] = memStat.UsedPercent
	}

	return info
}

// getComponents handles GET /components
// @Summary      List components
// @Tags         components
// @Produce      json
// @Success      200  {array}  model.ComponentView
// @Router       /components [get]
func (a *API) getComponents(c *gin.Context) {
	c.JSON(http.StatusOK, a.mon.Components())
}

// registerComponent handles POST /components
// @Summary      Register a component
// @Tags         components
// @Accept       json
// @Produce      json
// @Param        component  body  registerRequest  true  "Component to register"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /components [post]
func (a *API) registerComponent(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state := model.StateInactive
	if req.State != "" {
		parsed, err := model.ParseState(req.State)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		state = parsed
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	if err := a.mon.Register(req.Name, state, enabled); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}

// getComponent handles GET /components/:name
// @Summary      Get a component
// @Tags         components
// @Produce      json
// @Param        name  path  string  true  "Component name"
// @Success      200  {object}  model.ComponentView
// @Failure      404  {object}  map[string]string
// @Router       /components/{name} [get]
func (a *API) getComponent(c *gin.Context) {
	view, err := a.mon.Component(c.Param("name"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, view)
}

// unregisterComponent handles DELETE /components/:name
// @Summary      Unregister a component
// @Tags         components
// @Produce      json
// @Param        name  path  string  true  "Component name"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /components/{name} [delete]
func (a *API) unregisterComponent(c *gin.Context) {
	if err := a.mon.Unregister(c.Param("name")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "unregistered"})
}

// heartbeat handles POST /components/:name/heartbeat
// @Summary      Record a heartbeat
// @Tags         components
// @Produce      json
// @Param        name  path  string  true  "Component name"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /components/{name}/heartbeat [post]
func (a *API) heartbeat(c *gin.Context) {
	if err := a.mon.Heartbeat(c.Param("name")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "heartbeat recorded"})
}

// updateHealth handles POST /components/:name/health
// @Summary      Update a component's health score
// @Description  Apply a delta or set an absolute score, clamped into [0,100]
// @Tags         components
// @Accept       json
// @Produce      json
// @Param        name    path  string               true  "Component name"
// @Param        update  body  healthUpdateRequest  true  "Delta or absolute score"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /components/{name}/health [post]
func (a *API) updateHealth(c *gin.Context) {
	var req healthUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if (req.Delta == nil) == (req.Score == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of delta or score is required"})
		return
	}

	var (
		score int
		err   error
	)
	if req.Delta != nil {
		score, err = a.mon.AdjustHealth(c.Param("name"), *req.Delta)
	} else {
		score, err = a.mon.SetHealth(c.Param("name"), *req.Score)
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"health_score": score})
}

// setEnabled handles POST /components/:name/enabled
// @Summary      Enable or disable sweep evaluation for a component
// @Tags         components
// @Accept       json
// @Produce      json
// @Param        name     path  string          true  "Component name"
// @Param        enabled  body  enabledRequest  true  "Enabled flag"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /components/{name}/enabled [post]
func (a *API) setEnabled(c *gin.Context) {
	var req enabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.mon.SetEnabled(c.Param("name"), req.Enabled); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// getLogs handles GET /logs
// @Summary      Get recent log entries
// @Tags         logs
// @Produce      json
// @Param        limit  query  int  false  "Maximum entries to return"
// @Success      200  {array}  model.LogEntry
// @Router       /logs [get]
func (a *API) getLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	c.JSON(http.StatusOK, a.mon.Logs(limit))
}

// appendLog handles POST /logs
// @Summary      Append a log entry
// @Tags         logs
// @Accept       json
// @Produce      json
// @Param        entry  body  appendLogRequest  true  "Log entry"
// @Success      202  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /logs [post]
func (a *API) appendLog(c *gin.Context) {
	var req appendLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	level, err := model.ParseLevel(req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a.mon.Append(model.LogEntry{
		Level:      level,
		Category:   category,
		CallerID:   req.CallerID,
		CallerName: req.CallerName,
		Message:    req.Message,
	})

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// setLogLevel handles PUT /logs/level
// @Summary      Set the minimum accepted log level
// @Tags         logs
// @Accept       json
// @Produce      json
// @Param        level  body  logLevelRequest  true  "Minimum level"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /logs/level [put]
func (a *API) setLogLevel(c *gin.Context) {
	var req logLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	level, err := model.ParseLevel(req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.mon.SetLogLevel(level); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"level": level.String()})
}

// getEvents handles GET /events
// @Summary      Get recent events
// @Tags         events
// @Produce      json
// @Param        limit  query  int  false  "Maximum events to return"
// @Success      200  {array}  model.Event
// @Router       /events [get]
func (a *API) getEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	c.JSON(http.StatusOK, a.mon.Events(limit))
}

// gatewayOpen handles POST /gateway/open
// @Summary      Acquire exclusive gateway access
// @Tags         gateway
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /gateway/open [post]
func (a *API) gatewayOpen(c *gin.Context) {
	if err := a.gateway.Open(); err != nil {
		gatewayOpens.WithLabelValues("busy").Inc()
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	gatewayOpens.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "open"})
}

// gatewayClose handles POST /gateway/close
// @Summary      Release gateway access
// @Tags         gateway
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /gateway/close [post]
func (a *API) gatewayClose(c *gin.Context) {
	a.gateway.Close()
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

// gatewayRead handles GET /gateway/read
// @Summary      Read the encoded metrics snapshot
// @Description  Partial reads via offset cursor; beyond-size offsets return zero bytes
// @Tags         gateway
// @Produce      json
// @Param        offset  query  int  false  "Byte offset into the snapshot"
// @Param        length  query  int  false  "Maximum bytes to return"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /gateway/read [get]
func (a *API) gatewayRead(c *gin.Context) {
	offset, err := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	length, err := strconv.Atoi(c.DefaultQuery("length", strconv.Itoa(maxReadChunk)))
	if err != nil || length < 0 || length > maxReadChunk {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid length"})
		return
	}

	buf := make([]byte, length)
	n, err := a.gateway.ReadAt(buf, offset)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"offset": offset,
		"length": n,
		"data":   base64.StdEncoding.EncodeToString(buf[:n]),
	})
}

// gatewayWrite handles POST /gateway/write
// @Summary      Write to the control node (logged no-op)
// @Tags         gateway
// @Accept       octet-stream
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /gateway/write [post]
func (a *API) gatewayWrite(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxReadChunk))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	n, err := a.gateway.Write(body)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"written": n})
}

// gatewayCommand handles POST /gateway/command
// @Summary      Dispatch a fixed-layout gateway command
// @Description  Payload is the base64-encoded fixed-width request struct for the opcode
// @Tags         gateway
// @Accept       json
// @Produce      json
// @Param        command  body  commandRequest  true  "Opcode and payload"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /gateway/command [post]
func (a *API) gatewayCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload is not valid base64"})
		return
	}

	response, err := a.gateway.Command(req.Op, payload)
	if err != nil {
		gatewayCommands.WithLabelValues(opName(req.Op), "error").Inc()
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	gatewayCommands.WithLabelValues(opName(req.Op), "ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"op":       req.Op,
		"response": base64.StdEncoding.EncodeToString(response),
	})
}

func opName(op uint16) string {
	switch op {
	case gate.OpGetStatus:
		return "get-status"
	case gate.OpRegisterComponent:
		return "register-component"
	case gate.OpUpdateHealth:
		return "update-health"
	case gate.OpLogEvent:
		return "log-event"
	case gate.OpSetLogLevel:
		return "set-log-level"
	default:
		return "unknown"
	}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, monitor.ErrDuplicateComponent):
		return http.StatusConflict
	case errors.Is(err, monitor.ErrUnknownComponent):
		return http.StatusNotFound
	case errors.Is(err, gate.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, gate.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, gate.ErrBadPayload),
		errors.Is(err, monitor.ErrInvalidName),
		errors.Is(err, monitor.ErrInvalidState),
		errors.Is(err, monitor.ErrInvalidLevel):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
