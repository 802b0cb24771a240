package router

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pet-reunite/internal/adapters/auth/gotrue"
	"pet-reunite/internal/adapters/auth/jwtauth"
	"pet-reunite/internal/adapters/cache"
	"pet-reunite/internal/adapters/embeddings/gemini"
	"pet-reunite/internal/adapters/eventbus"
	"pet-reunite/internal/adapters/geocoding/nominatim"
	"pet-reunite/internal/adapters/media/s3presign"
	pg "pet-reunite/internal/adapters/storage/postgres"
	"pet-reunite/internal/config"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/auth"
	"pet-reunite/internal/ports/notify"
)

const (
	geocodeCacheEntries = 5000
	eventBuffer         = 512
)

// Resources guarda lo que hay que cerrar al apagar, en orden inverso de apertura.
type Resources struct {
	closers []func(ctx context.Context) error
}

func (r *Resources) add(f func(ctx context.Context) error) {
	r.closers = append(r.closers, f)
}

func (r *Resources) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Build arma las Options del router a partir de la configuración. Cada adaptador
// opcional se activa solo si su configuración está completa.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (Options, *Resources, error) {
	res := &Resources{}
	opts := Options{
		Log:            log,
		MatchThreshold: cfg.GenAI.MatchThreshold,
		PublicBaseURL:  cfg.PublicBaseURL,
		QRBaseURL:      cfg.QRBaseURL,
	}

	fail := func(err error) (Options, *Resources, error) {
		_ = res.Close(context.Background())
		return Options{}, nil, err
	}

	if dsn := strings.TrimSpace(cfg.DB.DSN); dsn != "" {
		db, err := pg.Open(dsn)
		if err != nil {
			return fail(fmt.Errorf("postgres: %w", err))
		}
		res.add(func(context.Context) error { return db.Close() })
		opts.DB = db
		log.Info("storage: postgres", nil)
	} else {
		log.Warn("storage: in-memory (DB_DSN vacío)", nil)
	}

	verifier, err := buildVerifier(cfg, log, res)
	if err != nil {
		return fail(err)
	}
	opts.AuthVerifier = verifier

	if cfg.Geocoder.BaseURL != "" {
		geo, err := nominatim.New(nominatim.Config{
			BaseURL:   cfg.Geocoder.BaseURL,
			UserAgent: cfg.Geocoder.UserAgent,
		})
		if err != nil {
			return fail(err)
		}
		c, err := buildCache(ctx, cfg, log, res)
		if err != nil {
			return fail(err)
		}
		opts.Geocoder = nominatim.NewCached(geo, c, cfg.Geocoder.CacheTTL, log.With(map[string]any{"module": "geocoding"}))
	}

	if cfg.GenAI.APIKey != "" {
		emb, err := gemini.New(ctx, gemini.Config{
			APIKey:     cfg.GenAI.APIKey,
			Model:      cfg.GenAI.Model,
			Dimensions: int32(cfg.GenAI.Dimensions),
		})
		if err != nil {
			return fail(err)
		}
		opts.Embedder = emb
		log.Info("matching: enabled", map[string]any{"model": emb.Name()})
	}

	if cfg.S3.Bucket != "" {
		up, err := s3presign.New(ctx, s3presign.Config{
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			return fail(err)
		}
		opts.Uploader = up
	}

	var sink notify.Publisher = eventbus.NewLogSink(log.With(map[string]any{"module": "events"}))
	if len(cfg.Kafka.Brokers) > 0 {
		k, err := eventbus.NewKafkaSink(eventbus.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		if err != nil {
			return fail(err)
		}
		res.add(func(context.Context) error { return k.Close() })
		sink = k
	}
	bus := eventbus.NewAsync(sink, eventBuffer, log)
	res.add(bus.Close)
	opts.Publisher = bus

	return opts, res, nil
}

// buildVerifier: JWT local si hay secreto o JWKS; si no, el servicio de auth; si no, modo dev (nil).
func buildVerifier(cfg *config.Config, log logger.Logger, res *Resources) (auth.AuthVerifier, error) {
	a := cfg.Auth
	switch {
	case a.JWTSecret != "" || a.JWKSURL != "":
		v, err := jwtauth.New(jwtauth.Config{
			Secret:    a.JWTSecret,
			JWKSURL:   a.JWKSURL,
			AdminRole: a.AdminRoleName,
			Log:       log,
		})
		if err != nil {
			return nil, err
		}
		res.add(func(context.Context) error { v.Close(); return nil })
		log.Info("auth: jwt", nil)
		return v, nil
	case a.GoTrueURL != "" && a.GoTrueAPIKey != "":
		c, err := gotrue.NewClient(gotrue.Config{BaseURL: a.GoTrueURL, APIKey: a.GoTrueAPIKey})
		if err != nil {
			return nil, err
		}
		log.Info("auth: gotrue", nil)
		return gotrue.NewVerifier(c, a.AdminRoleName), nil
	default:
		log.Warn("auth: modo dev (X-Debug-User-ID)", nil)
		return nil, nil
	}
}

func buildCache(ctx context.Context, cfg *config.Config, log logger.Logger, res *Resources) (cache.Cache, error) {
	if cfg.Redis.URL == "" {
		return cache.NewMemory(geocodeCacheEntries, cfg.Geocoder.CacheTTL), nil
	}
	rc, err := cache.NewRedis(ctx, cfg.Redis.URL, cfg.AppName+":")
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	res.add(func(context.Context) error { return rc.Close() })
	log.Info("cache: redis", nil)
	return rc, nil
}

// OpenDB abre Postgres para comandos que no levantan el server (migrate).
func OpenDB(cfg *config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DB.DSN) == "" {
		return nil, errors.New("DB_DSN is required")
	}
	return pg.Open(cfg.DB.DSN)
}
