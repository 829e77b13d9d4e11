package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/victornm/quli/internal/errors"
	"github.com/victornm/quli/internal/report"
)

const welcomeMessage = "Welcome to the quiz generator API"

type CORSConfig struct {
	// AllowOrigins empty allows every origin.
	AllowOrigins []string
}

type RateLimitConfig struct {
	// RPS is the sustained quiz generation rate, 0 disables the limit.
	RPS   float64
	Burst int
}

func (a *API) registerHTTP(e *gin.Engine, cc CORSConfig, rc RateLimitConfig) {
	e.Use(cors.New(corsConfig(cc)))

	e.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, WelcomeResponse{Message: welcomeMessage})
	})

	quizzes := e.Group("/quizzes")
	quizzes.POST("/", rateLimit(rc), a.handleCreateQuiz)
	quizzes.GET("/:id", a.handleGetQuiz)
	quizzes.POST("/:id/submit", a.handleSubmitQuiz)
	quizzes.GET("/:id/leaderboard", a.handleGetLeaderboard)

	results := e.Group("/results")
	results.GET("/:id", a.handleGetResult)
	results.GET("/:id/report", a.handleGetReport)
}

func corsConfig(cc CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cc.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cc.AllowOrigins
	}
	return c
}

// rateLimit rejects requests above the configured rate with 429.
func rateLimit(rc RateLimitConfig) gin.HandlerFunc {
	if rc.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	burst := rc.Burst
	if burst <= 0 {
		burst = 1
	}
	l := rate.NewLimiter(rate.Limit(rc.RPS), burst)

	return func(c *gin.Context) {
		if !l.Allow() {
			abortWithError(c, errors.New(errors.CodeResourceExhausted, errors.WithMessagef("too many quiz generation requests")))
			return
		}
		c.Next()
	}
}

func (a *API) handleCreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidArgument("invalid request body: %v", err))
		return
	}

	resp, err := a.CreateQuiz(c.Request.Context(), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a *API) handleGetQuiz(c *gin.Context) {
	resp, err := a.GetQuiz(c.Request.Context(), &GetQuizRequest{QuizID: c.Param("id")})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a *API) handleSubmitQuiz(c *gin.Context) {
	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.InvalidArgument("invalid request body: %v", err))
		return
	}
	req.QuizID = c.Param("id")

	resp, err := a.SubmitQuiz(c.Request.Context(), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a *API) handleGetResult(c *gin.Context) {
	resp, err := a.GetResult(c.Request.Context(), &GetResultRequest{ResultID: c.Param("id")})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a *API) handleGetReport(c *gin.Context) {
	r, err := a.getResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, r); err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="result-`+r.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (a *API) handleGetLeaderboard(c *gin.Context) {
	req := GetLeaderboardRequest{QuizID: c.Param("id")}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			abortWithError(c, errors.InvalidArgument("invalid limit %q", s))
			return
		}
		req.Limit = n
	}

	resp, err := a.GetLeaderboard(c.Request.Context(), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func abortWithError(c *gin.Context, err error) {
	e := errors.Convert(err)
	if e.Code == errors.CodeInternal {
		slog.ErrorContext(c.Request.Context(), "api: request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}

	c.AbortWithStatusJSON(e.HTTPStatusCode(), e)
}
