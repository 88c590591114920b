package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"forager/internal/adapter/summary"
	"forager/internal/app/episode"
	"forager/internal/app/ports"
	"forager/internal/app/replay"
	"forager/internal/app/status"
	"forager/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	EpisodeUC episode.UseCase
	StatusUC  status.UseCase
	ReplayUC  replay.UseCase
	KPI       kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	episodes := s.Group("/api/episodes")
	episodes.POST("", h.runEpisode)
	episodes.GET("/:id", h.status)
	episodes.GET("/:id/events", h.replay)
	episodes.GET("/:id/summary.csv", h.summary)

	s.GET("/ops/kpi", h.kpi)
}

type episodeRequest struct {
	Seed          int64    `json:"seed"`
	Height        int      `json:"height"`
	Width         int      `json:"width"`
	ObstacleRatio float64  `json:"obstacle_ratio"`
	Resources     []string `json:"resources,omitempty"`
	Emergent      []string `json:"emergent,omitempty"`
	Targets       []string `json:"targets"`
	Speed         string   `json:"speed,omitempty"`
}

func (h Handler) runEpisode(c context.Context, ctx *app.RequestContext) {
	var body episodeRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.EpisodeUC.Run(c, episode.Request{
		World: ports.WorldSpec{
			Seed:          body.Seed,
			Height:        body.Height,
			Width:         body.Width,
			ObstacleRatio: body.ObstacleRatio,
			Resources:     body.Resources,
			Emergent:      body.Emergent,
		},
		Targets: body.Targets,
		Speed:   world.Speed(strings.TrimSpace(body.Speed)),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c, status.Request{EpisodeID: ctx.Param("id")})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) replay(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		EpisodeID:    ctx.Param("id"),
		Limit:        limit,
		Kind:         string(ctx.Query("kind")),
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) summary(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c, status.Request{EpisodeID: ctx.Param("id")})
	if err != nil {
		writeError(ctx, err)
		return
	}
	var buf bytes.Buffer
	if err := summary.WriteTargets(&buf, resp.Report); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Response.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resp.Report.EpisodeID+".csv"))
	ctx.Data(consts.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, episode.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, status.ErrInvalidRequest),
		errors.Is(err, ports.ErrInvalidWorldSpec):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, world.ErrMalformedWorld):
		writeErrorBody(ctx, http.StatusUnprocessableEntity, "malformed_world", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
