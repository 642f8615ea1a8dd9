package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"opsdesk/config"
	"opsdesk/integrations/resend"
	"opsdesk/integrations/teamwork"
	"opsdesk/integrations/xero"
	"opsdesk/models"
	"opsdesk/services"
	"opsdesk/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var (
	invoicesSyncedCounter    prometheus.Counter
	matchesConfirmedCounter  prometheus.Counter
	payrunEntriesImportedCtr prometheus.Counter
)

func init() {
	invoicesSyncedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "xero_invoices_synced_total",
			Help: "Total number of invoices synced from Xero.",
		},
	)
	matchesConfirmedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matches_confirmed_total",
			Help: "Total number of ticket/quote/invoice matches confirmed.",
		},
	)
	payrunEntriesImportedCtr = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payrun_entries_imported_total",
			Help: "Total number of payrun entries inserted by sheet imports.",
		},
	)
	prometheus.MustRegister(invoicesSyncedCounter, matchesConfirmedCounter, payrunEntriesImportedCtr)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	logging.Info("Running database auto-migration...")
	db.AutoMigrate(
		&models.Ticket{}, &models.Quote{}, &models.Invoice{}, &models.Match{},
		&models.TempQuote{}, &models.TempInvoice{}, &models.TempPayrunEntry{},
		&models.Article{}, &models.XeroConnection{},
	)

	// Setup services
	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	var mailer *resend.Client
	if cfg.ResendAPIKey != "" {
		mailer = resend.NewClient(cfg, logging)
	} else {
		logging.Warn("RESEND_API_KEY not set, mail notifications disabled")
	}
	matchService := services.NewMatchService(db, logging)
	importService := services.NewImportService(db, logging, mailer, cfg.NotifyEmail)
	documentService := services.NewDocumentService(cfg, db, s3Client, logging)
	xeroClient := xero.NewClient(cfg, db, logging)
	xeroSync := xero.NewSyncService(db, xeroClient, logging)
	teamworkClient := teamwork.NewClient(cfg, logging)
	teamworkSync := teamwork.NewSyncService(db, teamworkClient, logging)

	// Setup router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	setupTicketRoutes(api, db, logging)
	setupQuoteRoutes(api, db, logging)
	setupInvoiceRoutes(api, db, logging)
	setupMatchingRoutes(api, db, matchService, cfg, logging)
	setupPayrollRoutes(api, importService, db, logging)
	setupStagingImportRoutes(api, importService, logging)
	setupArticleRoutes(api, db, mailer, cfg, logging)
	setupXeroRoutes(api, cfg, db, xeroSync, logging)
	setupTeamworkRoutes(api, teamworkSync, logging)
	setupDocumentRoutes(api, documentService, logging)

	// Nightly Xero invoice sync
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled Xero invoice sync...")
		count, err := xeroSync.SyncInvoices(context.Background())
		if err != nil {
			logging.Error("Scheduled invoice sync failed", zap.Error(err))
		} else {
			logging.Info("Scheduled invoice sync completed", zap.Int("invoices", count))
			invoicesSyncedCounter.Add(float64(count))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupTicketRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	tickets := rg.Group("/tickets")

	tickets.GET("/", func(c *gin.Context) {
		query := db.Model(&models.Ticket{}).Order("created_at desc")
		if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
			query = query.Limit(limit)
		}
		if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
			query = query.Offset(offset)
		}
		var out []models.Ticket
		if err := query.Find(&out).Error; err != nil {
			log.Error("Database query for tickets failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, out)
	})

	tickets.POST("/query", func(c *gin.Context) {
		type TicketQuery struct {
			TicketID     string `json:"ticketid"`
			Status       string `json:"status"`
			CustomerName string `json:"customer_name"`
			Source       string `json:"source"`
			Limit        int    `json:"limit"`
		}
		var req TicketQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Ticket{})
		if req.TicketID != "" {
			query = query.Where("ticketid = ?", req.TicketID)
		}
		if req.Status != "" {
			query = query.Where("status = ?", req.Status)
		}
		if req.CustomerName != "" {
			query = query.Where("customer_name ILIKE ?", "%"+req.CustomerName+"%")
		}
		if req.Source != "" {
			query = query.Where("source = ?", req.Source)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var out []models.Ticket
		if err := query.Order("created_at desc").Find(&out).Error; err != nil {
			log.Error("Database query for tickets failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, out)
	})

	tickets.POST("/", func(c *gin.Context) {
		var ticket models.Ticket
		if err := c.ShouldBindJSON(&ticket); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if ticket.TicketID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ticketid is required"})
			return
		}
		if ticket.Source == "" {
			ticket.Source = "manual"
		}
		if err := db.Create(&ticket).Error; err != nil {
			log.Error("Failed to create ticket", zap.String("ticketid", ticket.TicketID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ticket"})
			return
		}
		c.JSON(http.StatusCreated, ticket)
	})

	tickets.PUT("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var ticket models.Ticket
		if err := db.First(&ticket, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
				return
			}
			log.Error("DB error checking for ticket on PUT", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		// Bind into a map so absent fields are not clobbered.
		var updateData map[string]interface{}
		if err := c.ShouldBindJSON(&updateData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := db.Model(&ticket).Updates(updateData).Error; err != nil {
			log.Error("DB error updating ticket", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ticket"})
			return
		}
		c.JSON(http.StatusOK, ticket)
	})
}

func setupQuoteRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	quotes := rg.Group("/quotes")

	quotes.GET("/", func(c *gin.Context) {
		query := db.Model(&models.Quote{}).Order("created_at desc")
		if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
			query = query.Limit(limit)
		}
		if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
			query = query.Offset(offset)
		}
		var out []models.Quote
		if err := query.Find(&out).Error; err != nil {
			log.Error("Database query for quotes failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, out)
	})

	quotes.POST("/query", func(c *gin.Context) {
		type QuoteQuery struct {
			Number          string `json:"number"`
			Status          string `json:"status"`
			CustomerName    string `json:"customer_name"`
			MatchedTicketID string `json:"matched_ticketid"`
			Unmatched       *bool  `json:"unmatched"`
			Limit           int    `json:"limit"`
		}
		var req QuoteQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Quote{})
		if req.Number != "" {
			query = query.Where("number = ?", req.Number)
		}
		if req.Status != "" {
			query = query.Where("status = ?", req.Status)
		}
		if req.CustomerName != "" {
			query = query.Where("customer_name ILIKE ?", "%"+req.CustomerName+"%")
		}
		if req.MatchedTicketID != "" {
			query = query.Where("matched_ticketid = ?", req.MatchedTicketID)
		}
		if req.Unmatched != nil && *req.Unmatched {
			query = query.Where("matched_ticketid = '' OR matched_ticketid IS NULL")
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var out []models.Quote
		if err := query.Order("created_at desc").Find(&out).Error; err != nil {
			log.Error("Database query for quotes failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, out)
	})
}

func setupInvoiceRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	invoices := rg.Group("/invoices")

	invoices.GET("/", func(c *gin.Context) {
		query := db.Model(&models.Invoice{}).Order("created_at desc")
		if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
			query = query.Limit(limit)
		}
		if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
			query = query.Offset(offset)
		}
		var out []models.Invoice
		if err := query.Find(&out).Error; err != nil {
			log.Error("Database query for invoices failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, out)
	})

	invoices.POST("/query", func(c *gin.Context) {
		type InvoiceQuery struct {
			Number       string   `json:"number"`
			Status       string   `json:"status"`
			CustomerName string   `json:"customer_name"`
			QuoteNumber  string   `json:"quote_number"`
			MinAmountDue *float64 `json:"min_amount_due"`
			Limit        int      `json:"limit"`
		}
		var req InvoiceQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Invoice{})
		if req.Number != "" {
			query = query.Where("number = ?", req.Number)
		}
		if req.Status != "" {
			query = query.Where("status = ?", req.Status)
		}
		if req.CustomerName != "" {
			query = query.Where("customer_name ILIKE ?", "%"+req.CustomerName+"%")
		}
		if req.QuoteNumber != "" {
			query = query.Where("quote_number = ?", req.QuoteNumber)
		}
		if req.MinAmountDue != nil {
			query = query.Where("amount_due >= ?", *req.MinAmountDue)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var out []models.Invoice
		if err := query.Order("created_at desc").Find(&out).Error; err != nil {
			log.Error("Database query for invoices failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, out)
	})
}

// confirmMatchRequest is the confirm-match payload. Evidence carries the
// reviewer-side score components and is stored verbatim on the match row.
type confirmMatchRequest struct {
	TicketID      string          `json:"ticketid" binding:"required"`
	QuoteNumber   *string         `json:"quote_number"`
	InvoiceNumber *string         `json:"invoice_number"`
	MatchScore    float64         `json:"match_score"`
	Confidence    string          `json:"confidence"`
	ConfirmedBy   string          `json:"confirmed_by"`
	Evidence      json.RawMessage `json:"evidence"`
}

func matchFromConfirmRequest(req confirmMatchRequest) models.Match {
	match := models.Match{
		TicketID:    req.TicketID,
		MatchScore:  req.MatchScore,
		Confidence:  req.Confidence,
		ConfirmedBy: req.ConfirmedBy,
	}
	if match.Confidence == "" {
		match.Confidence = services.ConfidenceForScore(req.MatchScore)
	}
	if req.QuoteNumber != nil {
		match.QuoteNumber = *req.QuoteNumber
	}
	if req.InvoiceNumber != nil {
		match.InvoiceNumber = *req.InvoiceNumber
	}
	if len(req.Evidence) > 0 {
		match.Evidence = datatypes.JSON(req.Evidence)
	}
	return match
}

func setupMatchingRoutes(rg *gin.RouterGroup, db *gorm.DB, matcher *services.MatchService, cfg *config.Config, log *zap.Logger) {
	// POST - run the matcher over current data. Read-only, nothing is
	// persisted until a match is confirmed.
	rg.POST("/run-matching", func(c *gin.Context) {
		var req struct {
			MinScore     *float64 `json:"min_score"`
			IncludeStats bool     `json:"include_stats"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
				return
			}
		}

		minScore := cfg.MatchMinScore
		if req.MinScore != nil {
			if *req.MinScore < 0 || *req.MinScore > 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "min_score must be between 0 and 1"})
				return
			}
			minScore = *req.MinScore
		}

		matches, err := matcher.FindTicketQuoteMatches(c.Request.Context(), minScore)
		if err != nil {
			log.Error("Matching run failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "matching failed", "details": err.Error()})
			return
		}

		bands := map[string]int{}
		for _, m := range matches {
			bands[m.Confidence]++
		}
		resp := gin.H{
			"matches": matches,
			"summary": gin.H{
				"total":     len(matches),
				"threshold": minScore,
				"high":      bands["high"],
				"medium":    bands["medium"],
				"low":       bands["low"],
			},
		}
		if req.IncludeStats {
			stats, err := matcher.GetMatchingStats(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "stats aggregation failed", "details": err.Error()})
				return
			}
			resp["stats"] = stats
		}
		c.JSON(http.StatusOK, resp)
	})

	// GET - stored-match stats only, without running the matcher.
	rg.GET("/run-matching", func(c *gin.Context) {
		stats, err := matcher.GetMatchingStats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stats aggregation failed", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stats": stats})
	})

	rg.GET("/matching-stats", func(c *gin.Context) {
		stats, err := matcher.GetMatchingStats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stats aggregation failed", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"stats":     stats,
			"timestamp": time.Now().UTC(),
		})
	})

	// POST - persist a human-reviewed match decision. The two staging
	// back-references are written concurrently and independently; one
	// failing does not roll back the other.
	rg.POST("/confirm-match", func(c *gin.Context) {
		var req confirmMatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'ticketid' is required."})
			return
		}
		if req.QuoteNumber == nil && req.InvoiceNumber == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quote_number or invoice_number is required"})
			return
		}
		if req.MatchScore < 0 || req.MatchScore > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_score must be between 0 and 1"})
			return
		}

		match := matchFromConfirmRequest(req)

		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticketid"}, {Name: "quote_number"}, {Name: "invoice_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"match_score", "confidence", "confirmed_by", "evidence", "updated_at"}),
		}).Create(&match).Error
		if err != nil {
			log.Error("Failed to upsert match", zap.String("ticketid", req.TicketID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save match", "details": err.Error()})
			return
		}

		var wg sync.WaitGroup
		var quoteErr, invoiceErr error
		if match.QuoteNumber != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				quoteErr = db.Model(&models.TempQuote{}).
					Where("number = ?", match.QuoteNumber).
					Update("matched_ticketid", match.TicketID).Error
			}()
		}
		if match.InvoiceNumber != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				invoiceErr = db.Model(&models.TempInvoice{}).
					Where("number = ?", match.InvoiceNumber).
					Updates(map[string]interface{}{
						"matched_ticketid":     match.TicketID,
						"matched_quote_number": match.QuoteNumber,
					}).Error
			}()
		}
		wg.Wait()

		if quoteErr != nil || invoiceErr != nil {
			// The match row is already saved; a partial staging update stands.
			err := quoteErr
			if err == nil {
				err = invoiceErr
			}
			log.Error("Staging back-reference update failed", zap.String("ticketid", match.TicketID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update staging rows", "details": err.Error()})
			return
		}

		matchesConfirmedCounter.Inc()
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"match":   match,
			"message": "match confirmed",
		})
	})
}

func setupPayrollRoutes(rg *gin.RouterGroup, importer *services.ImportService, db *gorm.DB, log *zap.Logger) {
	payroll := rg.Group("/payroll")

	// POST - synchronous xlsx import; large sheets block the request for
	// the duration.
	payroll.POST("/import", func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart 'file' field is required"})
			return
		}
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
			return
		}
		defer f.Close()

		report, err := importer.ImportPayrunSheet(c.Request.Context(), f)
		if err != nil {
			if errors.Is(err, services.ErrEmptySheet) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "spreadsheet has no data rows"})
				return
			}
			log.Error("Payrun import failed", zap.String("filename", file.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed", "details": err.Error()})
			return
		}

		payrunEntriesImportedCtr.Add(float64(report.Inserted))
		c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
	})

	payroll.GET("/entries", func(c *gin.Context) {
		query := db.Model(&models.TempPayrunEntry{}).Order("id asc")
		if employer := c.Query("employer_id"); employer != "" {
			query = query.Where("employer_id = ?", employer)
		}
		if code := c.Query("payrun_code"); code != "" {
			query = query.Where("payrun_code = ?", code)
		}
		if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
			query = query.Limit(limit)
		}
		if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
			query = query.Offset(offset)
		}
		var out []models.TempPayrunEntry
		if err := query.Find(&out).Error; err != nil {
			log.Error("Database query for payrun entries failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, out)
	})
}

func setupStagingImportRoutes(rg *gin.RouterGroup, importer *services.ImportService, log *zap.Logger) {
	imports := rg.Group("/imports")

	handle := func(kind string, run func(c *gin.Context, r io.Reader) (*services.StagingImportReport, error)) gin.HandlerFunc {
		return func(c *gin.Context) {
			file, err := c.FormFile("file")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "multipart 'file' field is required"})
				return
			}
			f, err := file.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
				return
			}
			defer f.Close()

			report, err := run(c, f)
			if err != nil {
				if errors.Is(err, services.ErrEmptySheet) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "spreadsheet has no data rows"})
					return
				}
				log.Error("Staging import failed", zap.String("kind", kind), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed", "details": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
		}
	}

	imports.POST("/quotes", handle("quotes", func(c *gin.Context, r io.Reader) (*services.StagingImportReport, error) {
		return importer.ImportQuoteSheet(c.Request.Context(), r)
	}))
	imports.POST("/invoices", handle("invoices", func(c *gin.Context, r io.Reader) (*services.StagingImportReport, error) {
		return importer.ImportInvoiceSheet(c.Request.Context(), r)
	}))
}

func setupArticleRoutes(rg *gin.RouterGroup, db *gorm.DB, mailer *resend.Client, cfg *config.Config, log *zap.Logger) {
	articles := rg.Group("/articles")

	articles.POST("/", func(c *gin.Context) {
		var article models.Article
		if err := c.ShouldBindJSON(&article); err != nil {
			log.Error("Invalid request body for article creation", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := db.Create(&article).Error; err != nil {
			log.Error("Failed to create article", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save article"})
			return
		}
		log.Info("Article created successfully", zap.Uint("id", article.ID), zap.String("title", article.Title))
		c.JSON(http.StatusCreated, article)
	})

	articles.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var article models.Article
		if err := db.First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
				return
			}
			log.Error("Database error while fetching article", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, article)
	})

	articles.PUT("/:id", func(c *gin.Context) {
		id := c.Param("id")
		var article models.Article
		if err := db.First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
				return
			}
			log.Error("Database error while fetching article", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		var updateData map[string]interface{}
		if err := c.ShouldBindJSON(&updateData); err != nil {
			log.Error("Invalid request body for article update", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if err := db.Model(&article).Updates(updateData).Error; err != nil {
			log.Error("Failed to update article", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update article"})
			return
		}
		c.JSON(http.StatusOK, article)
	})

	articles.POST("/query", func(c *gin.Context) {
		type ArticleQuery struct {
			ContentStatus string `json:"content_status"`
			Category      string `json:"category"`
			AuthorName    string `json:"author_name"`
			Limit         int    `json:"limit"`
		}
		var req ArticleQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.Article{})
		if req.ContentStatus != "" {
			query = query.Where("content_status = ?", req.ContentStatus)
		}
		if req.Category != "" {
			query = query.Where("category = ?", req.Category)
		}
		if req.AuthorName != "" {
			query = query.Where("author_name = ?", req.AuthorName)
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var out []models.Article
		if err := query.Order("created_at desc").Find(&out).Error; err != nil {
			log.Error("Database query for articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, out)
	})

	// POST - move an article to published and notify the editorial inbox.
	articles.POST("/:id/publish", func(c *gin.Context) {
		id := c.Param("id")
		var article models.Article
		if err := db.First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"content_status": "published",
			"published_at":   now,
		}
		if err := db.Model(&article).Updates(updates).Error; err != nil {
			log.Error("Failed to publish article", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish article"})
			return
		}

		if mailer != nil && cfg.NotifyEmail != "" {
			body := fmt.Sprintf("<p>Article <strong>%s</strong> was published.</p>", article.Title)
			if err := mailer.Send(c.Request.Context(), cfg.NotifyEmail, "Article published: "+article.Title, body); err != nil {
				log.Warn("Publish notification mail failed", zap.String("id", id), zap.Error(err))
			}
		}

		log.Info("Article published", zap.String("id", id), zap.String("title", article.Title))
		c.JSON(http.StatusOK, gin.H{"success": true, "published_at": now})
	})
}

func setupXeroRoutes(rg *gin.RouterGroup, cfg *config.Config, db *gorm.DB, syncSvc *xero.SyncService, log *zap.Logger) {
	xg := rg.Group("/xero")

	// GET - start the OAuth2 authorization-code flow.
	xg.GET("/connect", func(c *gin.Context) {
		if cfg.XeroClientID == "" || cfg.XeroClientSecret == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Xero credentials not configured"})
			return
		}
		state := randomState()
		c.SetCookie("xero_oauth_state", state, 600, "/", "", false, true)
		c.Redirect(http.StatusFound, xero.OAuthConfig(cfg).AuthCodeURL(state))
	})

	// GET - OAuth2 callback. Errors redirect back with a query flag so
	// the UI can show something; the details land in the log.
	xg.GET("/callback", func(c *gin.Context) {
		state, err := c.Cookie("xero_oauth_state")
		if err != nil || state == "" || c.Query("state") != state {
			c.Redirect(http.StatusFound, "/?xero=state_mismatch")
			return
		}
		code := c.Query("code")
		if code == "" {
			c.Redirect(http.StatusFound, "/?xero=denied")
			return
		}

		token, err := xero.OAuthConfig(cfg).Exchange(c.Request.Context(), code)
		if err != nil {
			log.Error("Xero code exchange failed", zap.Error(err))
			c.Redirect(http.StatusFound, "/?xero=error")
			return
		}
		connections, err := xero.FetchConnections(c.Request.Context(), token)
		if err != nil || len(connections) == 0 {
			log.Error("Xero connections fetch failed", zap.Error(err))
			c.Redirect(http.StatusFound, "/?xero=error")
			return
		}
		for _, conn := range connections {
			if err := xero.SaveConnection(db, conn, token); err != nil {
				log.Error("Failed to save Xero connection", zap.String("tenant_id", conn.TenantID), zap.Error(err))
				c.Redirect(http.StatusFound, "/?xero=error")
				return
			}
		}

		log.Info("Xero connected", zap.Int("tenants", len(connections)))
		c.Redirect(http.StatusFound, "/?xero=connected")
	})

	xg.GET("/sync/invoices", func(c *gin.Context) {
		count, err := syncSvc.SyncInvoices(c.Request.Context())
		if err != nil {
			if errors.Is(err, xero.ErrNotConnected) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Xero is not connected"})
				return
			}
			log.Error("Xero invoice sync failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		invoicesSyncedCounter.Add(float64(count))
		c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
	})

	xg.GET("/sync/quotes", func(c *gin.Context) {
		count, err := syncSvc.SyncQuotes(c.Request.Context())
		if err != nil {
			if errors.Is(err, xero.ErrNotConnected) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Xero is not connected"})
				return
			}
			log.Error("Xero quote sync failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
	})
}

func setupTeamworkRoutes(rg *gin.RouterGroup, syncSvc *teamwork.SyncService, log *zap.Logger) {
	tw := rg.Group("/teamwork")

	tw.POST("/sync/tickets", func(c *gin.Context) {
		count, err := syncSvc.SyncTickets(c.Request.Context())
		if err != nil {
			log.Error("Teamwork ticket sync failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
	})
}

func setupDocumentRoutes(rg *gin.RouterGroup, docs *services.DocumentService, log *zap.Logger) {
	documents := rg.Group("/documents")

	documents.POST("/invoice-pdf/:number", func(c *gin.Context) {
		number := c.Param("number")
		url, err := docs.GenerateInvoicePDF(c.Request.Context(), number)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
				return
			}
			log.Error("Invoice PDF generation failed", zap.String("number", number), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "PDF generation failed", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
	})
}

func randomState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b)
}
