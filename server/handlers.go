package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "tenderlink/server/errors"
)

// timelineRecord запись хронологии проекта в ответе API
type timelineRecord struct {
	RowID           string   `json:"row_id"`
	Title           string   `json:"title"`
	PublishDate     string   `json:"publish_date"`
	RecordType      string   `json:"record_type"`
	TenderRound     int      `json:"tender_round"`
	LinkType        string   `json:"link_type"`
	RelatedTenderID string   `json:"related_tender_id,omitempty"`
	RelatedBidID    string   `json:"related_bid_id,omitempty"`
	Awardee         string   `json:"awardee,omitempty"`
	AmountWanYuan   *float64 `json:"amount_wan_yuan"`
	IsLLM           bool     `json:"is_llm"`
	LLMLayer        string   `json:"llm_layer,omitempty"`
}

// linkPairResponse пара 招标→中标 в ответе API
type linkPairResponse struct {
	ProjectID     string   `json:"project_id"`
	TenderRowID   string   `json:"tender_row_id"`
	BidRowID      string   `json:"bid_row_id"`
	TenderRound   int      `json:"tender_round"`
	PublishDate   string   `json:"publish_date"`
	Awardee       string   `json:"awardee,omitempty"`
	AmountWanYuan *float64 `json:"amount_wan_yuan"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleOverview(c *gin.Context) {
	runID, ok := s.resolveRunID(c)
	if !ok {
		return
	}
	overview, err := s.store.GetOverview(runID)
	if err != nil {
		s.respondError(c, apperrors.NewInternalError("не удалось получить сводку", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "overview": overview})
}

// handleCountBy фабрика обработчиков распределения по колонке
func (s *Server) handleCountBy(column string) gin.HandlerFunc {
	return func(c *gin.Context) {
		runID, ok := s.resolveRunID(c)
		if !ok {
			return
		}
		items, err := s.store.CountBy(runID, column)
		if err != nil {
			s.respondError(c, apperrors.NewInternalError("не удалось получить распределение", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"run_id": runID, "items": items})
	}
}

func (s *Server) handleTrend(c *gin.Context) {
	runID, ok := s.resolveRunID(c)
	if !ok {
		return
	}
	metric := c.DefaultQuery("metric", "records")
	if metric != "records" && metric != "projects" {
		s.respondError(c, apperrors.NewValidationError(
			"параметр metric должен быть records или projects", nil))
		return
	}
	trend, err := s.store.YearlyTrend(runID, metric == "projects")
	if err != nil {
		s.respondError(c, apperrors.NewInternalError("не удалось получить тренд", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "metric": metric, "trend": trend})
}

func (s *Server) handleTopCustomers(c *gin.Context) {
	runID, ok := s.resolveRunID(c)
	if !ok {
		return
	}
	limit, err := parseLimit(c.Query("limit"), 15)
	if err != nil {
		s.respondError(c, apperrors.NewValidationError("параметр limit должен быть целым числом", err))
		return
	}
	items, err := s.store.TopCustomers(runID, limit)
	if err != nil {
		s.respondError(c, apperrors.NewInternalError("не удалось получить клиентов", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "items": items})
}

func (s *Server) handleListProjects(c *gin.Context) {
	runID, ok := s.resolveRunID(c)
	if !ok {
		return
	}
	limit, err := parseLimit(c.Query("limit"), 100)
	if err != nil {
		s.respondError(c, apperrors.NewValidationError("параметр limit должен быть целым числом", err))
		return
	}
	onlyLLM := c.Query("is_llm") == "true" || c.Query("is_llm") == "1"
	projects, err := s.store.ListProjects(runID, c.Query("customer"), onlyLLM, limit)
	if err != nil {
		s.respondError(c, apperrors.NewInternalError("не удалось получить проекты", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "projects": projects})
}

func (s *Server) handleProjectTimeline(c *gin.Context) {
	runID, ok := s.resolveRunID(c)
	if !ok {
		return
	}
	projectID := c.Param("id")
	records, err := s.store.ProjectTimeline(runID, projectID)
	if err != nil {
		s.respondError(c, apperrors.NewInternalError("не удалось получить хронологию", err))
		return
	}
	if len(records) == 0 {
		s.respondError(c, apperrors.NewNotFoundError("проект не найден: "+projectID, nil))
		return
	}

	timeline := make([]timelineRecord, 0, len(records))
	for _, r := range records {
		timeline = append(timeline, timelineRecord{
			RowID:           r.RowID,
			Title:           r.Title,
			PublishDate:     r.PublishDate,
			RecordType:      r.RecordType,
			TenderRound:     r.TenderRound,
			LinkType:        r.LinkType,
			RelatedTenderID: r.RelatedTenderID,
			RelatedBidID:    r.RelatedBidID,
			Awardee:         r.Awardee,
			AmountWanYuan:   nullFloatPtr(r.AmountWanYuan),
			IsLLM:           r.IsLLM,
			LLMLayer:        r.LLMLayer,
		})
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "project_id": projectID, "timeline": timeline})
}

func (s *Server) handleLinkPairs(c *gin.Context) {
	runID, ok := s.resolveRunID(c)
	if !ok {
		return
	}
	projectID := c.Query("project_id")
	if projectID == "" {
		s.respondError(c, apperrors.NewValidationError("параметр project_id обязателен", nil))
		return
	}
	pairs, err := s.store.ProjectLinkPairs(runID, projectID)
	if err != nil {
		s.respondError(c, apperrors.NewInternalError("не удалось получить пары", err))
		return
	}

	resp := make([]linkPairResponse, 0, len(pairs))
	for _, p := range pairs {
		resp = append(resp, linkPairResponse{
			ProjectID:     p.ProjectID,
			TenderRowID:   p.TenderRowID,
			BidRowID:      p.BidRowID,
			TenderRound:   p.TenderRound,
			PublishDate:   p.PublishDate,
			Awardee:       p.Awardee,
			AmountWanYuan: nullFloatPtr(p.AmountWanYuan),
		})
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "pairs": resp})
}

// resolveRunID берет run_id из запроса или последний сохраненный.
// При ошибке сам пишет ответ и возвращает false.
func (s *Server) resolveRunID(c *gin.Context) (string, bool) {
	runID := c.Query("run_id")
	if runID != "" {
		return runID, true
	}
	runID, err := s.store.LatestRunID()
	if err != nil {
		s.respondError(c, apperrors.NewInternalError("не удалось определить запуск", err))
		return "", false
	}
	if runID == "" {
		s.respondError(c, apperrors.NewNotFoundError(
			"нет сохраненных запусков, сначала выполните конвейер", nil))
		return "", false
	}
	return runID, true
}

func (s *Server) respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("необработанная ошибка", err)
	}
	s.logger.Error("ошибка запроса",
		"path", c.Request.URL.Path,
		"status", appErr.StatusCode(),
		"error", appErr.Error(),
		"request_id", c.GetString("request_id"),
	)
	c.AbortWithStatusJSON(appErr.StatusCode(), gin.H{"message": appErr.Message})
}

func parseLimit(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return limit, nil
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
