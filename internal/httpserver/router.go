package httpserver

import (
	"context"
	"errors"
	"time"

	"orgbanking/internal/domain"
	banksvc "orgbanking/internal/service/bank"
	customersvc "orgbanking/internal/service/customer"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// BankService is the bank account surface the handlers depend on.
type BankService interface {
	Create(ctx context.Context, userID string, in banksvc.Input) (*domain.BankAccount, error)
	Get(ctx context.Context, userID, id string) (*domain.BankAccount, error)
	List(ctx context.Context, userID, organizationID string, page, pageSize int) (domain.Page[domain.BankAccount], error)
	Update(ctx context.Context, userID, id string, in banksvc.Input) (*domain.BankAccount, error)
	Delete(ctx context.Context, userID, id string) error
	CountrySchema(country string) (map[string]string, error)
	IsSupportedCountry(country string) bool
}

// CustomerService is the customer surface the handlers depend on.
type CustomerService interface {
	Create(ctx context.Context, userID, organizationID string, in customersvc.Input) (*domain.Customer, error)
	GetByID(ctx context.Context, userID, customerID string) (*domain.Customer, error)
	Update(ctx context.Context, userID, customerID string, in customersvc.Input) (*domain.Customer, error)
	Delete(ctx context.Context, userID, customerID string) error
	AddExtraInfo(ctx context.Context, userID, customerID string, entries []customersvc.OtherInfoInput) ([]domain.OtherInformation, error)
	GetExtraInfo(ctx context.Context, userID, customerID string) ([]domain.OtherInformation, error)
	List(ctx context.Context, userID, organizationID string, offset, limit int) (domain.Page[domain.Customer], error)
	Search(ctx context.Context, userID, organizationID, text string, offset, limit int) ([]domain.Customer, error)
	SortBy(ctx context.Context, userID, organizationID, field, dir string, offset, limit int) ([]domain.Customer, error)
}

// Deps groups the services mounted by the router.
type Deps struct {
	BankSvc     BankService
	CustomerSvc CustomerService
}

// Config carries transport settings.
type Config struct {
	JWTSecret          string
	CORSAllowedOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps, cfg Config) (*gin.Engine, error) {
	if deps.BankSvc == nil || deps.CustomerSvc == nil {
		return nil, errors.New("httpserver: bank and customer services are required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("httpserver: jwt secret is required")
	}

	router := gin.New()
	router.Use(requestLogger(logger), recovery(logger))
	if c, ok := corsConfig(cfg.CORSAllowedOrigins); ok {
		router.Use(cors.New(c))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/", authMiddleware([]byte(cfg.JWTSecret), logger))

	banks := &bankHandler{svc: deps.BankSvc, logger: logger}
	api.POST("/banks", banks.create)
	api.GET("/banks/schema", banks.schema)
	api.GET("/banks/validator", banks.validator)
	api.GET("/banks/organizations/:organizationID", banks.list)
	api.GET("/banks/:bankID", banks.get)
	api.PUT("/banks/:bankID", banks.update)
	api.DELETE("/banks/:bankID", banks.delete)

	customers := &customerHandler{svc: deps.CustomerSvc, logger: logger}
	api.GET("/organizations/:organizationID/customers", customers.list)
	api.POST("/organizations/:organizationID/customers", customers.create)
	api.GET("/organizations/:organizationID/customers/search", customers.search)
	api.GET("/organizations/:organizationID/customers/sort", customers.sort)
	api.GET("/customers/:customerID", customers.get)
	api.PUT("/customers/:customerID", customers.update)
	api.DELETE("/customers/:customerID", customers.delete)
	api.GET("/customers/:customerID/other-info", customers.listOtherInfo)
	api.POST("/customers/:customerID/other-info", customers.addOtherInfo)

	return router, nil
}

func corsConfig(origins []string) (cors.Config, bool) {
	if len(origins) == 0 {
		return cors.Config{}, false
	}
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c, true
		}
	}
	c.AllowOrigins = origins
	return c, true
}
