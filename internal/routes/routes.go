package routes

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gmao-system/internal/controllers"
	"gmao-system/internal/repositories"
	"gmao-system/internal/services"
	"gmao-system/pkg/config"
	"gmao-system/pkg/filestorage"
)

// Deps - всё, что создаётся в main и нужно маршрутам.
type Deps struct {
	DB          *pgxpool.Pool
	Cache       repositories.CacheRepositoryInterface
	FileStorage filestorage.FileStorageInterface
	Config      *config.Config
	Logger      *zap.Logger
}

func InitRouter(e *echo.Echo, deps Deps) {
	logger := deps.Logger
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	txManager := repositories.NewTxManager(deps.DB)
	cache := services.NewBaseService(deps.Cache, deps.Config.Cache.TTL, logger)

	// --- 1. РЕПОЗИТОРИИ ---
	equipmentRepo := repositories.NewEquipmentRepository(deps.DB)
	groupRepo := repositories.NewEquipmentGroupRepository(deps.DB)
	documentRepo := repositories.NewDocumentRepository(deps.DB)
	partRepo := repositories.NewPartRepository(deps.DB)
	interventionRepo := repositories.NewInterventionRepository(deps.DB)
	historyRepo := repositories.NewEquipmentHistoryRepository(deps.DB)
	junctions := repositories.NewJunctions(deps.DB)

	// --- 2. СЕРВИСЫ ---
	membership := services.NewMembershipService(txManager, equipmentRepo, groupRepo, documentRepo, partRepo, junctions, cache, logger)
	equipmentService := services.NewEquipmentService(txManager, equipmentRepo, historyRepo, junctions, membership, deps.FileStorage, cache, logger)
	deletionService := services.NewEquipmentDeletionService(
		txManager, equipmentRepo, groupRepo, documentRepo, partRepo,
		interventionRepo, historyRepo, junctions, deps.FileStorage, cache, logger,
	)
	resourceService := services.NewGroupResourceService(equipmentRepo, documentRepo, partRepo, junctions, cache, logger)
	transferService := services.NewEquipmentTransferService(equipmentRepo, groupRepo, junctions, equipmentService, logger)

	documentService := services.NewDocumentService(documentRepo, txManager, membership, deps.FileStorage, cache, logger)
	partService := services.NewPartService(partRepo, txManager, membership, cache, logger)
	groupService := services.NewGroupService(groupRepo, txManager, membership, deps.FileStorage, cache, logger)
	interventionService := services.NewInterventionService(interventionRepo, txManager, logger)

	// --- 3. КОНТРОЛЛЕРЫ ---
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, membership, deletionService, resourceService, transferService, logger)
	groupCtrl := controllers.NewEquipmentGroupController(membership, logger)
	uploadCtrl := controllers.NewUploadController(deps.FileStorage, logger)

	groupCrud := controllers.NewGroupController(groupService, logger)
	documentCrud := controllers.NewDocumentController(documentService, logger)
	partCrud := controllers.NewPartController(partService, logger)
	interventionCrud := controllers.NewInterventionController(interventionService, logger)

	// --- 4. РОУТЕРЫ ---
	runEquipmentRouter(api, equipmentCtrl)
	runEquipmentGroupRouter(api, groupCrud, groupCtrl)
	runDocumentRouter(api, documentCrud, controllers.NewDocumentLinkController(membership, logger))
	runPartRouter(api, partCrud, controllers.NewPartLinkController(membership, logger))
	runInterventionRouter(api, interventionCrud)
	runUploadRouter(api, uploadCtrl)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	logger.Info("INIT_ROUTER: Создание маршрутов завершено")
}
