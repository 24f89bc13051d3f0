package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatal("Invalid configuration: ", err)
	}

	if cfg.isProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}
	logrus.SetLevel(logrus.InfoLevel)

	if err := initDB(cfg.App.DBPath); err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}

	initAdminToken()

	// Clean up old visitor data for privacy compliance (run in background)
	go cleanupOldVisitorData()

	r := buildRouter(cfg, loadProjects())

	logrus.Infof("Server started on http://localhost:%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logrus.Fatal("Server error: ", err)
	}
}

func buildRouter(cfg *Config, projects []Project) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger())

	// In development a panic crashes the process so it gets noticed; in
	// production it is logged and the request gets a 500.
	if cfg.isProduction() {
		r.Use(recoveryMiddleware())
	}

	r.Use(visitorTrackingMiddleware())

	r.LoadHTMLGlob("templates/*")

	r.Static("/images", cfg.Server.ImagesDir)
	r.Static("/static", cfg.Server.StaticDir)

	// Home page route
	r.GET("/", indexHandler(projects))

	// HTMX fragment endpoints, served through the response cache
	fragments := newPageCache(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	cached := r.Group("/", fragments.middleware())
	cached.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"title": "Contact Me",
		})
	})
	cached.GET("/work-content", workContentHandler)
	cached.GET("/education-content", educationContentHandler)

	// Handle contact form submission with HTMX
	r.POST("/contact", contactHandler(cfg.SMTP))

	// JSON API, rate limited
	limiter := newRateLimiter(cfg.Rate.Limit, cfg.Rate.Window)
	api := r.Group("/api", corsMiddleware(cfg.Server.CORSOrigins), limiter.middleware())
	api.GET("/health", healthHandler(cfg.App.Version))
	api.GET("/projects", projectsAPIHandler(projects))

	// Demo launch endpoints
	ecosystem := newDemoLauncher("Ecosystem Simulator",
		cfg.Launch.EcosystemBin, cfg.Launch.EcosystemArgs, cfg.Launch.Cooldown)
	codeProcessor := newDemoLauncher("Code Processor",
		cfg.Launch.CodeProcessorBin, cfg.Launch.CodeProcessorArgs, cfg.Launch.Cooldown)
	api.POST("/launch-ecosystem", launchHandler(ecosystem))
	api.POST("/launch-code-processor", launchHandler(codeProcessor))

	setupAdminRoutes(r)

	r.NoRoute(notFoundHandler)

	return r
}

func healthHandler(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "portfolio-site",
			"version": version,
		})
	}
}

// Work experience content
func workContentHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "work-content.html", gin.H{
		"jobTitle":  "Software Engineer",
		"company":   "Fieldline Robotics",
		"startDate": "Mar 2022",
		"endDate":   "Present",
		"logoPath":  "images/fieldline-logo.png",
		"bulletPoints": []string{
			"Built and operate the telemetry ingestion service handling sensor streams from a fleet of agricultural robots",
			"Cut fleet-wide incident response time by adding structured logging and an internal launch dashboard for field tools",
			"Mentored two junior engineers through their first production services",
		},
		"jobTitle2":  "Backend Developer",
		"company2":   "Brightcart",
		"startDate2": "Jun 2019",
		"endDate2":   "Feb 2022",
		"logoPath2":  "images/brightcart-logo.png",
		"bulletPoints2": []string{
			"Owned the order fulfillment API serving the storefront and two warehouse integrations",
			"Reduced checkout p99 latency by consolidating per-request database round trips",
			"Introduced contract tests between the storefront and fulfillment teams",
		},
	})
}

// Education content
func educationContentHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "education-content.html", gin.H{
		"degree":      "Bachelor of Computer Science",
		"institution": "University of Waterloo",
		"startDate":   "Sept 2015",
		"endDate":     "May 2019",
		"logoPath":    "images/uw-logo.png",
		"bulletPoints": []string{
			"Focus on distributed systems and programming languages",
			"Capstone: a collaborative music sequencer over WebRTC",
		},
		"degree2":      "Machine Learning Specialization",
		"institution2": "Coursera",
		"startDate2":   "Jan 2021",
		"endDate2":     "Aug 2021",
		"logoPath2":    "images/coursera-logo.png",
		"bulletPoints2": []string{
			"Completed with honors, final project on time-series anomaly detection",
		},
	})
}
