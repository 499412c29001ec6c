package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/chapterhq/election-api/docs"
	v1 "github.com/chapterhq/election-api/internal/api/handler/v1"
	"github.com/chapterhq/election-api/internal/api/middleware"
	"github.com/chapterhq/election-api/internal/broadcast"
	"github.com/chapterhq/election-api/internal/config"
	"github.com/chapterhq/election-api/internal/metrics"
	"github.com/chapterhq/election-api/internal/repository"
	"github.com/chapterhq/election-api/internal/repository/dao"
	"github.com/chapterhq/election-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB, hub *broadcast.Hub, registry *prometheus.Registry) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	auditSvc := s.initAuditService(db)
	electionSvc := s.initElectionService(db, hub, auditSvc)

	electionHandler := v1.NewElectionHandler(electionSvc)
	candidateHandler := v1.NewCandidateHandler(electionSvc)
	voteHandler := s.initVoteHandler(db, hub, auditSvc, registry)
	liveHandler := v1.NewLiveHandler(electionSvc, hub)
	auditHandler := v1.NewAuditHandler(auditSvc)
	s.MountHandlers(electionHandler, candidateHandler, voteHandler, liveHandler, auditHandler, registry)

	return s
}

func (s *Server) initAuditService(db *gorm.DB) *service.AuditService {
	auditDAO := dao.NewAuditDAO(db)
	repo := repository.NewAuditRepository(auditDAO)

	return service.NewAuditService(repo)
}

func (s *Server) initElectionService(db *gorm.DB, hub *broadcast.Hub, audit *service.AuditService) *service.ElectionService {
	electionDAO := dao.NewElectionDAO(db)
	repo := repository.NewElectionRepository(electionDAO)
	voteRepo := repository.NewVoteRepository(dao.NewVoteDAO(db))

	return service.NewElectionService(repo, voteRepo, hub, audit)
}

func (s *Server) initVoteHandler(db *gorm.DB, hub *broadcast.Hub, audit *service.AuditService, registry *prometheus.Registry) *v1.VoteHandler {
	tokens := service.NewBallotTokenService(s.Config.Ballot.SigningKey, s.Config.Ballot.TTL)
	voteRepo := repository.NewVoteRepository(dao.NewVoteDAO(db))
	electionRepo := repository.NewElectionRepository(dao.NewElectionDAO(db))
	voteMetrics := metrics.NewVoteMetrics(registry)
	svc := service.NewVoteService(tokens, voteRepo, electionRepo, hub, audit, voteMetrics, s.Config.Ballot.StoreTimeout)

	return v1.NewVoteHandler(svc)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(middleware.RequestMeta())
}

func (s *Server) MountHandlers(
	electionHandler *v1.ElectionHandler,
	candidateHandler *v1.CandidateHandler,
	voteHandler *v1.VoteHandler,
	liveHandler *v1.LiveHandler,
	auditHandler *v1.AuditHandler,
	registry *prometheus.Registry,
) {
	const basePath = "/api/v1"

	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authed.POST("/elections", electionHandler.HandleCreateElection)
		authed.GET("/elections", electionHandler.HandleListElections)
		authed.GET("/elections/:electionID", electionHandler.HandleGetElection)
		authed.PATCH("/elections/:electionID/approve", electionHandler.HandleApproveElection)
		authed.PATCH("/elections/:electionID/start", electionHandler.HandleStartElection)
		authed.PATCH("/elections/:electionID/close", electionHandler.HandleCloseElection)
		authed.GET("/elections/:electionID/export", electionHandler.HandleExportResults)
		authed.POST("/elections/:electionID/positions", electionHandler.HandleCreatePosition)

		authed.POST("/positions/:positionID/candidates", candidateHandler.HandleAddCandidate)
		authed.PATCH("/candidates/:candidateID", candidateHandler.HandleUpdateCandidate)
		authed.PATCH("/candidates/:candidateID/withdraw", candidateHandler.HandleWithdrawCandidate)

		authed.POST("/elections/:electionID/ballot", voteHandler.HandleIssueBallot)
		authed.POST("/votes", voteHandler.HandleCastVote)

		// Live results
		authed.GET("/elections/:electionID/live", liveHandler.HandleLiveResults)

		authed.GET("/audit", auditHandler.HandleListAudit)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Election API"
	docs.SwaggerInfo.Description = "Election and voting subsystem of the membership portal."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
