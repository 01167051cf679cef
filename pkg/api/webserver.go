package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/chenBenjamin97/soccer-coach/pkg/metrics"
	"github.com/chenBenjamin97/soccer-coach/pkg/report"
	"github.com/chenBenjamin97/soccer-coach/pkg/skills"
	"github.com/chenBenjamin97/soccer-coach/pkg/utils"
	"github.com/chenBenjamin97/soccer-coach/pkg/video"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

//Processor turns an uploaded video into an annotated one, *video.Pipeline implements it
type Processor interface {
	Process(ctx context.Context, inputPath, outputPath string) (*report.VideoReport, error)
}

//Server holds everything the routes need
type Server struct {
	SourceDir      string //uploaded videos
	ReadyDir       string //annotated videos
	MaxUploadBytes int64

	Assessor *skills.Assessor
	//Processor returns the processor for a mode name, empty means the configured default
	Processor func(mode string) (Processor, error)

	Log           logrus.FieldLogger
	Metrics       *metrics.Manager
	UploadLimiter *rate.Limiter
}

var contentTypes = map[string]string{
	"mp4": "video/mp4",
	"mov": "video/quicktime",
	"avi": "video/x-msvideo",
}

func SetRouter(s *Server) *gin.Engine {
	if s.Log == nil {
		s.Log = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.Log, s.Metrics))

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Metrics.Registry(), promhttp.HandlerOpts{})))

	apiRoutes := r.Group("/api")

	apiRoutes.POST("/Assess", s.assess)
	apiRoutes.POST("/Upload", RateLimit(s.UploadLimiter), s.upload)

	apiRoutes.GET("/ReadyVideosNames", func(ctx *gin.Context) {
		s.listDir(ctx, s.ReadyDir)
	})

	apiRoutes.GET("/UserUploadsVideosNames", func(ctx *gin.Context) {
		s.listDir(ctx, s.SourceDir)
	})

	apiRoutes.GET("/Play", s.play)
	apiRoutes.GET("/Download", s.download)

	return r
}

func (s *Server) listDir(ctx *gin.Context, dir string) {
	names, err := utils.ListDir(dir)
	if err != nil {
		ctx.Error(err)
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.JSON(http.StatusOK, names)
}

//AssessRequest carries self-ratings keyed by skill name, matched case-insensitively
type AssessRequest struct {
	Player  string         `json:"player"`
	Ratings map[string]int `json:"ratings"`
}

//AssessResponse is the skill report for a self-assessment
type AssessResponse struct {
	Player   string          `json:"player,omitempty"`
	Ratings  []skills.Rating `json:"ratings"`
	Weakest  skills.Skill    `json:"weakest_skill"`
	Drills   []string        `json:"recommended_drills"`
	Feedback []skills.Entry  `json:"feedback"`
}

func (s *Server) assess(ctx *gin.Context) {
	var req AssessRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	ratings, err := skills.ParseRatings(req.Ratings)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assessment, err := s.Assessor.Analyze(ratings)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	feedback, err := s.Assessor.Feedback(ratings, skills.StyleDetailed)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, AssessResponse{
		Player:   strings.TrimSpace(req.Player),
		Ratings:  ratings.Ordered(),
		Weakest:  assessment.Weakest,
		Drills:   assessment.Drills,
		Feedback: skills.OrderedFeedback(feedback),
	})
}

//UploadResponse is the report of an uploaded video. Name is the id shared by the
//stored upload and its annotated output.
type UploadResponse struct {
	Name   string `json:"name"`
	Player string `json:"player,omitempty"`
	*report.VideoReport
}

func (s *Server) upload(ctx *gin.Context) {
	if s.MaxUploadBytes > 0 {
		if ctx.Request.ContentLength > s.MaxUploadBytes {
			ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "video is too large"})
			return
		}
		//bodies without a declared length are cut while reading
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, s.MaxUploadBytes)
	}

	fHeader, err := ctx.FormFile("video")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "video is too large"})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing 'video' file"})
		return
	}

	ext, ok := utils.VideoExtension(fHeader.Filename)
	if !ok {
		ctx.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "allowed video types are " + strings.Join(utils.AllowedVideoExtensions, ", ")})
		return
	}

	processor, err := s.Processor(ctx.PostForm("mode"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := uuid.NewString()
	srcFilePath := filepath.Join(s.SourceDir, name+"."+ext)
	log := s.Log.WithFields(logrus.Fields{"name": name, "filename": fHeader.Filename, "size": fHeader.Size})
	log.Info("api/Upload: Received new file")

	if err := ctx.SaveUploadedFile(fHeader, srcFilePath); err != nil {
		ctx.Error(err)
		ctx.Status(http.StatusInternalServerError)
		return
	}

	outputPath := filepath.Join(s.ReadyDir, name+utils.OutputExtension)
	rep, err := processor.Process(ctx.Request.Context(), srcFilePath, outputPath)
	if err != nil {
		ctx.Error(err)
		switch {
		case errors.Is(err, video.ErrVideoOpen), errors.Is(err, video.ErrEmptyVideo):
			if rmErr := os.Remove(srcFilePath); rmErr != nil {
				log.WithError(rmErr).Warn("api/Upload: Could not remove rejected upload")
			}
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not process video"})
		}
		return
	}

	ctx.JSON(http.StatusOK, UploadResponse{
		Name:        name,
		Player:      strings.TrimSpace(ctx.PostForm("player")),
		VideoReport: rep,
	})
}

//videoPath resolves the name query parameter inside dir, it answers the request itself on failure
func videoPath(ctx *gin.Context, dir string) (string, bool) {
	name := ctx.Query("name")
	if !utils.SafeName(name) {
		ctx.Status(http.StatusNotAcceptable) //missing or invalid url parameter
		return "", false
	}

	p := filepath.Join(dir, name)
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			ctx.Status(http.StatusNotFound)
		} else {
			ctx.Error(err)
			ctx.Status(http.StatusInternalServerError)
		}
		return "", false
	}
	return p, true
}

func (s *Server) play(ctx *gin.Context) {
	var dir string
	switch ctx.Query("analyzed") {
	case "true":
		dir = s.ReadyDir
	case "false":
		dir = s.SourceDir
	default:
		ctx.Status(http.StatusNotAcceptable) //missing url parameter
		return
	}

	p, ok := videoPath(ctx, dir)
	if !ok {
		return
	}

	ext, _ := utils.VideoExtension(p)
	if ct, ok := contentTypes[ext]; ok {
		ctx.Header("Content-Type", ct)
	}
	http.ServeFile(ctx.Writer, ctx.Request, p)
}

func (s *Server) download(ctx *gin.Context) {
	p, ok := videoPath(ctx, s.ReadyDir)
	if !ok {
		return
	}
	ctx.FileAttachment(p, filepath.Base(p))
}
