package handlers

import (
	"net/http"
	"time"

	"library/internal/config"
	"library/internal/lending"
	"library/internal/middleware"
	"library/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	cfg      config.Config
	lending  LendingService
	ledger   LedgerService
	catalog  CatalogService
	accounts AccountService
	reviews  ReviewService
	reports  ReportService
	audit    AuditStore
	hub      *websocket.Hub
	now      func() time.Time
}

func New(cfg config.Config, lendingSvc LendingService, ledger LedgerService, catalog CatalogService, accounts AccountService, reviews ReviewService, reports ReportService, audit AuditStore, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:      cfg,
		lending:  lendingSvc,
		ledger:   ledger,
		catalog:  catalog,
		accounts: accounts,
		reviews:  reviews,
		reports:  reports,
		audit:    audit,
		hub:      hub,
		now:      time.Now,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.Get("/ws/credits", h.WSCredits)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		can := func(perm lending.Permission) chi.Router {
			return r.With(middleware.RequirePermission(perm))
		}

		can(lending.PermViewCatalog).Get("/titles", h.ListTitles)
		can(lending.PermViewCatalog).Get("/titles/{id}", h.GetTitle)
		can(lending.PermViewCatalog).Get("/titles/{id}/comments", h.ListComments)
		can(lending.PermViewCatalog).Get("/categories", h.ListCategories)

		can(lending.PermManageCatalog).Post("/titles", h.CreateTitle)
		can(lending.PermManageCatalog).Post("/categories", h.CreateCategory)
		can(lending.PermManageCatalog).Put("/titles/{id}/pricing", h.UpdatePricing)
		can(lending.PermManageCatalog).Post("/titles/{id}/copies", h.AddCopies)
		can(lending.PermManageCatalog).Post("/titles/{id}/copies/remove", h.RemoveCopies)
		can(lending.PermManageCatalog).Delete("/titles/{id}", h.DeleteTitle)
		can(lending.PermManageCatalog).Get("/copies/{id}/history", h.CopyHistory)

		can(lending.PermBorrow).Post("/titles/{id}/issue", h.IssueTitle)
		can(lending.PermBorrow).Post("/copies/{id}/return", h.ReturnCopy)
		can(lending.PermBorrow).Get("/me/books", h.MyBooks)
		can(lending.PermPurchase).Post("/titles/{id}/purchase", h.PurchaseTitle)
		can(lending.PermPurchase).Post("/copies/{id}/purchase", h.PurchaseCopy)
		can(lending.PermForceReturn).Post("/copies/{id}/force-return", h.ForceReturn)

		can(lending.PermReview).Post("/titles/{id}/comments", h.AddComment)
		can(lending.PermReview).Post("/titles/{id}/ratings", h.Rate)
		can(lending.PermModerateReviews).Delete("/comments/{id}", h.DeleteComment)

		can(lending.PermTopUp).Post("/accounts/{id}/credits", h.TopUp)
		can(lending.PermViewAccounts).Get("/accounts", h.ListAccounts)
		can(lending.PermViewAccounts).Get("/accounts/{id}/purchases", h.AccountPurchases)
		can(lending.PermViewAccounts).Get("/accounts/{id}/loans", h.AccountLoans)
		can(lending.PermViewAccounts).Get("/accounts/{id}/purchases.csv", h.AccountPurchasesCSV)
		can(lending.PermViewAccounts).Get("/accounts/{id}/loans.csv", h.AccountLoansCSV)
		can(lending.PermViewReports).Get("/reports/sales", h.MonthlySales)

		can(lending.PermManageAccounts).Post("/admin/librarians", h.CreateLibrarian)
		can(lending.PermManageAccounts).Delete("/admin/accounts/{id}", h.DeleteAccount)
		can(lending.PermManageAccounts).Get("/admin/audit", h.ListAuditLogs)
	})
	return router
}
