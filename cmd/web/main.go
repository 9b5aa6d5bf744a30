package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "log"
    "net/http"
    "os"
    "os/signal"
    "path/filepath"
    "syscall"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "go.uber.org/zap"

    "github.com/pulheze/Hafen/internal/catalog"
    "github.com/pulheze/Hafen/internal/config"
    "github.com/pulheze/Hafen/internal/content"
    handlersPkg "github.com/pulheze/Hafen/internal/handlers"
    "github.com/pulheze/Hafen/internal/i18n"
    mw "github.com/pulheze/Hafen/internal/middleware"
    "github.com/pulheze/Hafen/internal/observability"
    "github.com/pulheze/Hafen/internal/status"
    "github.com/pulheze/Hafen/internal/storefront"
)

var (
    templatesDir = "templates"
    publicDir    = "public"
    // devMode reparses templates per request and disables asset caching.
    devMode bool

    siteLang     = "pt"
    secureCookie bool
    i18nBundle   *i18n.Bundle
    catalogStore *catalog.Catalog
    contentLib   *content.Library
    pages        *storefront.Registry
    health       *status.Checker
)

func main() {
    cfg, err := config.Load(config.WithEnvFile(".env"))
    if err != nil {
        log.Fatalf("config: %v", err)
    }

    var (
        addr     string
        tmplPath string
        pubPath  string
    )
    flag.StringVar(&addr, "addr", cfg.Addr(), "HTTP listen address")
    flag.StringVar(&tmplPath, "templates", cfg.Paths.Templates, "templates directory")
    flag.StringVar(&pubPath, "public", cfg.Paths.Public, "public assets directory")
    flag.Parse()

    logger, err := observability.NewLogger(cfg.LogLevel)
    if err != nil {
        log.Fatalf("logger: %v", err)
    }
    defer func() { _ = logger.Sync() }()

    templatesDir = tmplPath
    publicDir = pubPath
    devMode = cfg.Dev
    secureCookie = cfg.Session.Secure

    if err := loadStorefront(cfg, logger); err != nil {
        logger.Fatal("load storefront", zap.Error(err))
    }
    if !devMode {
        if err := cacheTemplates(); err != nil {
            logger.Fatal("parse templates", zap.Error(err))
        }
    }

    sessions, err := mw.NewSessions(mw.SessionConfig{
        HashKey:  cfg.Session.HashKey,
        BlockKey: cfg.Session.BlockKey,
        Secure:   cfg.Session.Secure,
    })
    if err != nil {
        logger.Fatal("sessions", zap.Error(err))
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()
    go pages.Run(ctx, cfg.Storefront.SweepEvery)

    srv := &http.Server{
        Addr:              addr,
        Handler:           newRouter(logger, sessions),
        ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
        ReadTimeout:       cfg.Server.ReadTimeout,
        WriteTimeout:      cfg.Server.WriteTimeout,
        IdleTimeout:       cfg.Server.IdleTimeout,
    }

    errCh := make(chan error, 1)
    go func() {
        logger.Info("web listening", zap.String("addr", addr), zap.Bool("dev", devMode), zap.String("env", cfg.Environment))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errCh <- err
        }
        close(errCh)
    }()

    select {
    case <-ctx.Done():
    case err := <-errCh:
        if err != nil {
            logger.Fatal("listen", zap.Error(err))
        }
    }

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        logger.Error("graceful shutdown failed", zap.Error(err))
    }
    logger.Info("web stopped")
}

// loadStorefront reads locales, catalog and sections, and prepares the page
// registry and health checks.
func loadStorefront(cfg config.Config, logger *zap.Logger) error {
    siteLang = cfg.Storefront.Locale
    bundle, err := i18n.Load(cfg.Paths.Locales, siteLang, nil)
    if err != nil {
        return fmt.Errorf("load i18n: %w", err)
    }
    cat, err := catalog.Load(cfg.Paths.Catalog)
    if err != nil {
        return err
    }
    var ttl time.Duration
    if cfg.Dev {
        ttl = 2 * time.Second
    }
    lib := content.NewLibrary(cfg.Paths.Content, ttl)
    sections, err := lib.Sections()
    if err != nil {
        return err
    }

    i18nBundle = bundle
    catalogStore = cat
    contentLib = lib
    pages = storefront.NewRegistry(content.IDs(sections), handlersPkg.NavLinks(sections),
        storefront.WithIdleTTL(cfg.Storefront.PageIdleTTL),
        storefront.WithLogger(logger.Named("storefront")),
    )
    health = newHealth()
    logger.Info("storefront loaded",
        zap.Int("sections", len(sections)),
        zap.Int("products", len(cat.Products())),
        zap.Int("subscriptions", len(cat.Subscriptions())),
        zap.String("locale", siteLang),
    )
    return nil
}

func newHealth() *status.Checker {
    c := status.NewChecker()
    c.Register("catalog", func(ctx context.Context) (string, error) {
        if catalogStore == nil {
            return "", errors.New("catalog not loaded")
        }
        return fmt.Sprintf("%d products, %d subscriptions", len(catalogStore.Products()), len(catalogStore.Subscriptions())), nil
    })
    c.Register("content", func(ctx context.Context) (string, error) {
        sections, err := contentLib.Sections()
        if err != nil {
            return "", err
        }
        return fmt.Sprintf("%d sections", len(sections)), nil
    })
    c.Register("pages", func(ctx context.Context) (string, error) {
        return fmt.Sprintf("%d live", pages.Len()), nil
    })
    return c
}

func newRouter(logger *zap.Logger, sessions *mw.Sessions) http.Handler {
    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    // If deployed behind a trusted reverse proxy/load balancer, RealIP will use
    // X-Forwarded-For to determine the client IP.
    r.Use(middleware.RealIP)
    r.Use(observability.InjectLogger(logger))
    r.Use(observability.Trace)
    r.Use(mw.HTMX)
    r.Use(mw.Logger)
    r.Use(middleware.Recoverer)
    r.Use(middleware.Compress(5))
    r.Use(middleware.Timeout(30 * time.Second))

    r.Method(http.MethodGet, "/healthz", health.Handler())
    r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(publicDir, "assets"), "/assets", devMode))

    r.Group(func(r chi.Router) {
        r.Use(sessions.Middleware)
        r.Use(mw.CSRF(secureCookie))
        r.Use(mw.ContentLanguage(siteLang))

        r.Get("/", HomeHandler)
        r.Post("/navegar/{section}", NavigateHandler)
        r.Post("/quantidade/{product}/{action}", QuantityHandler)
        r.Post("/frete", ShippingHandler)
        r.Post("/contato", ContactHandler)

        r.Post("/carrinho/itens", CartAddItemHandler)
        r.Post("/carrinho/assinaturas", CartAddSubscriptionHandler)
        r.Post("/carrinho/itens/{index}/remover", CartRemoveHandler)
        r.Post("/carrinho/finalizar", CheckoutHandler)
    })
    return r
}
