// Package api exposes the analysis pipeline over HTTP. Every endpoint
// is a pure function of its request body; nothing is persisted between
// calls.
package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ratecompare/internal/adjust"
	"ratecompare/internal/aggregate"
	"ratecompare/internal/csvio"
	"ratecompare/internal/dedup"
	"ratecompare/internal/domain"
	"ratecompare/internal/match"
	"ratecompare/internal/normalize"
	"ratecompare/internal/observability"
	"ratecompare/internal/outlier"
)

// Handler holds the shared dependencies of the API endpoints.
type Handler struct {
	logger  *zap.Logger
	metrics *observability.Metrics
}

// SetupRoutes registers all API routes on the group.
func SetupRoutes(r *gin.RouterGroup, logger *zap.Logger, metrics *observability.Metrics) *Handler {
	h := &Handler{logger: logger, metrics: metrics}

	r.POST("/normalize", h.Normalize)
	r.POST("/merge", h.Merge)
	r.POST("/outliers", h.Outliers)
	r.POST("/adjustments", h.Adjustments)
	r.POST("/aggregate", h.Aggregate)
	r.POST("/match", h.Match)

	export := r.Group("/export")
	{
		export.POST("/records", h.ExportRecords)
		export.POST("/summary", h.ExportSummary)
		export.POST("/workbook", h.ExportWorkbook)
	}

	return h
}

type normalizeRequest struct {
	Rows   []map[string]any `json:"rows" binding:"required"`
	Source domain.Source    `json:"source"`
}

// Normalize converts raw source rows into canonical records, dropping
// rows without a resolvable store id.
func (h *Handler) Normalize(c *gin.Context) {
	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Source == "" {
		req.Source = domain.SourceDatabase
	}
	if !req.Source.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source must be Database or API"})
		return
	}

	records := normalize.Records(req.Rows, req.Source)
	h.metrics.RecordsNormalized.Add(float64(len(records)))
	h.metrics.RowsDropped.Add(float64(len(req.Rows) - len(records)))
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"dropped": len(req.Rows) - len(records),
	})
}

type mergeRequest struct {
	Existing []domain.RateRecord   `json:"existing"`
	Sources  [][]domain.RateRecord `json:"sources"`
}

// Merge deduplicates record batches by identity key, earlier sources
// winning.
func (h *Handler) Merge(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	merged := dedup.Merge(req.Existing, req.Sources...)
	c.JSON(http.StatusOK, gin.H{"records": merged})
}

type recordsRequest struct {
	Records []domain.RateRecord `json:"records" binding:"required"`
}

// Outliers runs outlier detection over the record set.
func (h *Handler) Outliers(c *gin.Context) {
	var req recordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates := outlier.Detect(req.Records)
	h.metrics.OutliersDetected.Add(float64(len(candidates)))
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

type adjustmentsRequest struct {
	SubjectStoreID string                          `json:"subjectStoreID" binding:"required"`
	StoreIDs       []string                        `json:"storeIDs" binding:"required"`
	Rankings       map[string]domain.StoreRankings `json:"rankings"`
	Factors        domain.AdjustmentFactors        `json:"factors"`
}

// Adjustments resolves the adjustment fraction per store.
func (h *Handler) Adjustments(c *gin.Context) {
	var req adjustmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	calc := adjust.NewCalculator(req.SubjectStoreID, req.Rankings, req.Factors)
	result := make(map[string]float64, len(req.StoreIDs))
	for _, id := range req.StoreIDs {
		result[id] = calc.For(id)
	}
	c.JSON(http.StatusOK, gin.H{"adjustments": result})
}

type aggregateRequest struct {
	Records        []domain.RateRecord             `json:"records" binding:"required"`
	SelectedSizes  []string                        `json:"selectedSizes" binding:"required"`
	SubjectStoreID string                          `json:"subjectStoreID"`
	Rankings       map[string]domain.StoreRankings `json:"rankings"`
	Factors        domain.AdjustmentFactors        `json:"factors"`
	Anchor         *time.Time                      `json:"anchor"`
}

func (r aggregateRequest) run() []domain.GroupedComparison {
	calc := adjust.NewCalculator(r.SubjectStoreID, r.Rankings, r.Factors)
	params := aggregate.Params{
		SelectedSizes:  r.SelectedSizes,
		SubjectStoreID: r.SubjectStoreID,
		AdjustmentFor:  calc.For,
	}
	if r.Anchor != nil {
		params.Anchor = *r.Anchor
	}
	return aggregate.Run(r.Records, params)
}

type matchRequest struct {
	StoreName    string                  `json:"storeName" binding:"required"`
	StoreAddress string                  `json:"storeAddress"`
	Facilities   []domain.FacilityRecord `json:"facilities" binding:"required"`
	TopN         int                     `json:"topN"`
}

// Match ranks CRM facility records against a store's name and address.
func (h *Handler) Match(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates := match.Rank(req.StoreName, req.StoreAddress, req.Facilities, req.TopN)
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// Aggregate builds the grouped comparison table.
func (h *Handler) Aggregate(c *gin.Context) {
	var req aggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": req.run()})
}

// ExportRecords renders the record set as the canonical CSV.
func (h *Handler) ExportRecords(c *gin.Context) {
	var req recordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := csvio.WriteRecords(&buf, req.Records); err != nil {
		h.logger.Error("export records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="records.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportSummary aggregates and renders the grouped summary CSV.
func (h *Handler) ExportSummary(c *gin.Context) {
	var req aggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := csvio.WriteSummary(&buf, req.run()); err != nil {
		h.logger.Error("export summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="summary.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportWorkbook aggregates and renders the summary as an Excel workbook.
func (h *Handler) ExportWorkbook(c *gin.Context) {
	var req aggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := csvio.WriteWorkbook(&buf, req.run()); err != nil {
		h.logger.Error("export workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="summary.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
